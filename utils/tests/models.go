package tests

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/entreg/entreg"
)

// User has one `Account` (has one), many `Pets` (has many), works in a
// Company (belongs to), has a Manager (belongs to, same entity) and manages a
// Team (has many, same entity). He speaks many languages (belongs to many)
// and has many friends (belongs to many, same entity).
// NamedPet shares the foreign key created for `Pets`.
type User struct {
	entreg.Base
	Name      string
	Age       uint
	Birthday  *time.Time
	Account   Account
	Pets      []*Pet
	NamedPet  *Pet
	CompanyID *int
	Company   Company
	ManagerID *uint
	Manager   *User
	Team      []User     `entreg:"foreignKey:ManagerID"`
	Languages []Language `entreg:"many2many:UserSpeak"`
	Friends   []*User    `entreg:"many2many:user_friends"`
	Active    bool
}

type Account struct {
	entreg.Base
	UserID sql.NullInt64
	Number string
}

type Pet struct {
	entreg.Base
	UserID *uint
	Name   string
	Toy    Toy
}

type Toy struct {
	entreg.Base
	Name  string
	PetID uint
}

type Company struct {
	ID   int
	Name string
}

type Language struct {
	Code string `entreg:"primarykey"`
	Name string
}

type Coupon struct {
	ID               int              `entreg:"primarykey;size:255"`
	AppliesToProduct []*CouponProduct `entreg:"foreignKey:CouponId;constraint:OnDelete:CASCADE"`
	AmountOff        uint32           `entreg:"column:amount_off"`
	PercentOff       float32          `entreg:"column:percent_off"`
}

type CouponProduct struct {
	CouponId  int    `entreg:"primarykey;size:255"`
	ProductId string `entreg:"primarykey;size:255"`
	Desc      string
}

type Order struct {
	entreg.Base
	Num      string
	Coupon   *Coupon
	CouponID string
}

type Parent struct {
	entreg.Base
	FavChildID uint
	FavChild   *Child
	Children   []*Child
}

type Child struct {
	entreg.Base
	Name     string
	ParentID *uint
	Parent   *Parent
}

// Blog and Tag both carry composite primary keys, linked through a join
// entity that picks up every key column from both sides.
type Blog struct {
	ID      uint   `entreg:"primarykey"`
	Locale  string `entreg:"primarykey"`
	Subject string
	Body    string
	Tags    []*Tag `entreg:"many2many:blog_tags"`
}

type Tag struct {
	ID     uint   `entreg:"primarykey"`
	Locale string `entreg:"primarykey"`
	Value  string
}

type Address struct {
	Street string
	City   string
}

type Supplier struct {
	entreg.Base
	Name    string
	Address Address `entreg:"embedded;embeddedPrefix:addr_"`
}

type MotorSpecs struct {
	Power string
}

func (specs *MotorSpecs) Scan(src interface{}) error {
	bytes, ok := src.([]byte)
	if !ok {
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", src))
	}
	result := MotorSpecs{}
	err := json.Unmarshal(bytes, &result)
	*specs = result
	return err
}

func (specs MotorSpecs) Value() (driver.Value, error) {
	res, err := json.Marshal(specs)
	return string(res), err
}

func (MotorSpecs) EntityDataType() entreg.DataType {
	return "json"
}

type Vehicle struct {
	entreg.Base
	Specs MotorSpecs
}

// DummyString looks like a string to the database while hiding its value from
// normal field access.
type DummyString struct {
	value string
}

func NewDummyString(s string) DummyString {
	return DummyString{value: s}
}

func (d *DummyString) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		d.value = v
	default:
		d.value = fmt.Sprintf("%v", value)
	}

	return nil
}

func (d DummyString) Value() (driver.Value, error) {
	return d.value, nil
}

func (d DummyString) String() string {
	return d.value
}

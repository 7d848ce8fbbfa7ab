package entreg

import (
	"sort"
	"strconv"
	"strings"
)

// Index describes a declared index. Declarations sharing a name merge into a
// single index, accumulating fields ordered by priority.
type Index struct {
	Name    string
	Class   string // UNIQUE | FULLTEXT | SPATIAL
	Type    string // btree, hash, gist, spgist, gin, and brin
	Where   string
	Comment string
	Option  string // WITH PARSER parser_name
	Fields  []IndexOption
}

// IndexOption one indexed column with its per-column settings
type IndexOption struct {
	*Column
	Expression string
	Sort       string // DESC, ASC
	Collate    string
	Length     int
	Priority   int
}

// MergeIndex add an index declaration, merging it into an existing index with
// the same name. Fields keep a stable order by ascending priority.
func (entity *Entity) MergeIndex(index *Index) *Index {
	for _, existing := range entity.Indexes {
		if existing.Name == index.Name {
			if existing.Class == "" {
				existing.Class = index.Class
			}
			if existing.Type == "" {
				existing.Type = index.Type
			}
			if existing.Where == "" {
				existing.Where = index.Where
			}
			if existing.Comment == "" {
				existing.Comment = index.Comment
			}
			if existing.Option == "" {
				existing.Option = index.Option
			}
			existing.Fields = append(existing.Fields, index.Fields...)
			sortIndexFields(existing)
			return existing
		}
	}

	sortIndexFields(index)
	entity.Indexes = append(entity.Indexes, index)
	return index
}

// LookUpIndex search an index by name
func (entity *Entity) LookUpIndex(name string) *Index {
	for _, index := range entity.Indexes {
		if index.Name == name {
			return index
		}
	}
	return nil
}

func sortIndexFields(index *Index) {
	sort.SliceStable(index.Fields, func(i, j int) bool {
		return index.Fields[i].Priority < index.Fields[j].Priority
	})
}

func (entity *Entity) parseColumnIndexes(column *Column) (indexes []*Index) {
	for _, value := range strings.Split(column.StructField.Tag.Get(TagName), ";") {
		if value != "" {
			v := strings.Split(value, ":")
			k := strings.TrimSpace(strings.ToUpper(v[0]))
			if k == "INDEX" || k == "UNIQUEINDEX" {
				var (
					name      string
					tag       = strings.Join(v[1:], ":")
					idx       = strings.Index(tag, ",")
					settings  = ParseTagSetting(tag, ",")
					length, _ = strconv.Atoi(settings["LENGTH"])
				)

				if idx == -1 {
					idx = len(tag)
				}

				name = tag[0:idx]
				if name == "" {
					name = entity.namerOrDefault().IndexName(entity.Table, column.Name)
				}

				if (k == "UNIQUEINDEX") || settings["UNIQUE"] != "" {
					settings["CLASS"] = "UNIQUE"
				}

				priority, err := strconv.Atoi(settings["PRIORITY"])
				if err != nil {
					priority = 10
				}

				indexes = append(indexes, &Index{
					Name:    name,
					Class:   settings["CLASS"],
					Type:    settings["TYPE"],
					Where:   settings["WHERE"],
					Comment: settings["COMMENT"],
					Option:  settings["OPTION"],
					Fields: []IndexOption{{
						Column:     column,
						Expression: settings["EXPRESSION"],
						Sort:       settings["SORT"],
						Collate:    settings["COLLATE"],
						Length:     length,
						Priority:   priority,
					}},
				})
			}
		}
	}
	return
}

package utils

import (
	"testing"
)

func TestSourceDir(t *testing.T) {
	cases := []struct {
		file string
		want string
	}{
		{
			file: `C:/Users/name/go/pkg/mod/github.com/entreg/entreg@v1.2.3/utils/utils.go`,
			want: `C:/Users/name/go/pkg/mod/github.com/entreg/`,
		},
		{
			file: `C:/go/work/proj/entreg/utils/utils.go`,
			want: `C:/go/work/proj/entreg/`,
		},
		{
			file: `C:/go/work/proj/entreg_alias/utils/utils.go`,
			want: `C:/go/work/proj/entreg_alias/`,
		},
		{
			file: `C:/go/work/proj/my.entreg.io/entreg@v1.2.3/utils/utils.go`,
			want: `C:/go/work/proj/my.entreg.io/entreg@v1.2.3/`,
		},
	}
	for _, c := range cases {
		s := sourceDir(c.file)
		if s != c.want {
			t.Fatalf("%s: expected %s, got %s", c.file, c.want, s)
		}
	}
}

package theora

import (
	"strings"

	"golang.org/x/text/cases"
)

// Comment holds the vendor string and user comments of the comment header.
// User comments are conventionally KEY=value with case-insensitive keys.
type Comment struct {
	Vendor   string
	Comments []string

	decodedOK bool
}

func (c *Comment) decoded() bool {
	return c.decodedOK
}

// Query returns the index-th value for tag, or false when there are fewer
// matching comments.
func (c Comment) Query(tag string, index int) (string, bool) {
	fold := cases.Fold()
	want := fold.String(tag)
	n := 0
	for _, entry := range c.Comments {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || fold.String(key) != want {
			continue
		}
		if n == index {
			return value, true
		}
		n++
	}
	return "", false
}

// QueryCount returns the number of comments carrying tag.
func (c Comment) QueryCount(tag string) int {
	fold := cases.Fold()
	want := fold.String(tag)
	n := 0
	for _, entry := range c.Comments {
		key, _, ok := strings.Cut(entry, "=")
		if ok && fold.String(key) == want {
			n++
		}
	}
	return n
}

func (c *Comment) unpack(r *bitReader) error {
	vendorLen, err := r.readLength()
	if err != nil {
		return badHeader("comment header truncated")
	}
	vendor, err := r.readBytes(int(vendorLen))
	if err != nil {
		return badHeader("vendor string length %d exceeds packet", vendorLen)
	}
	count, err := r.readLength()
	if err != nil {
		return badHeader("comment count missing")
	}
	// Each comment needs at least its four length bytes.
	if uint(count) > r.remaining()/32 {
		return badHeader("comment count %d exceeds packet", count)
	}

	comments := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		n, err := r.readLength()
		if err != nil {
			return badHeader("comment %d truncated", i)
		}
		value, err := r.readBytes(int(n))
		if err != nil {
			return badHeader("comment %d length %d exceeds packet", i, n)
		}
		comments = append(comments, string(value))
	}

	c.Vendor = string(vendor)
	c.Comments = comments
	c.decodedOK = true
	return nil
}

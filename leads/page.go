package leads

import (
	"net/url"
	"strconv"
)

const DefaultPageSize = 10

// Page is a zero-based page of the leads listing.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalized() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

func (p Page) Skip() int {
	p = p.normalized()
	return p.Number * p.Size
}

func (p Page) Limit() int {
	return p.normalized().Size
}

// Query renders the skip and limit parameters of GET /leads.
func (p Page) Query() url.Values {
	return url.Values{
		"skip":  {strconv.Itoa(p.Skip())},
		"limit": {strconv.Itoa(p.Limit())},
	}
}

func (p Page) Next() Page {
	p = p.normalized()
	p.Number++
	return p
}

func (p Page) Prev() Page {
	p = p.normalized()
	if p.Number > 0 {
		p.Number--
	}
	return p
}

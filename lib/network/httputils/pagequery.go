package httputils

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/storage"
)

const DefaultMaxLimit uint64 = 100

type PageQuery struct {
	request *http.Request
	cursor  []byte
	reverse bool
	limit   uint64
}

func NewPageQuery(r *http.Request) (*PageQuery, error) {
	p := &PageQuery{
		request: r,
		limit:   DefaultMaxLimit,
	}
	err := p.parseRequest()
	return p, err
}

func (p *PageQuery) Limit() uint64 {
	return p.limit
}

func (p *PageQuery) Reverse() bool {
	return p.reverse
}

func (p *PageQuery) Cursor() []byte {
	return p.cursor
}

func (p *PageQuery) SelfLink() string {
	return p.request.URL.String()
}

func (p *PageQuery) PrevLink(cursor []byte) string {
	return p.link(cursor, true)
}

func (p *PageQuery) NextLink(cursor []byte) string {
	return p.link(cursor, false)
}

func (p *PageQuery) ListOptions() storage.ListOptions {
	return storage.NewDefaultListOptions(p.reverse, p.cursor, p.limit)
}

func (p *PageQuery) link(cursor []byte, reverse bool) string {
	v := url.Values{
		"reverse": []string{strconv.FormatBool(reverse)},
	}
	if len(cursor) > 0 {
		v.Set("cursor", string(cursor))
	}
	if p.limit > 0 {
		v.Set("limit", strconv.FormatUint(p.limit, 10))
	}

	return fmt.Sprintf("%s?%s", p.request.URL.Path, v.Encode())
}

func (p *PageQuery) parseRequest() error {
	q := p.request.URL.Query()

	if r := q.Get("reverse"); r != "" {
		reverse, err := strconv.ParseBool(r)
		if err != nil {
			return errors.BadRequestParameter.Clone().SetData("reverse", r)
		}
		p.reverse = reverse
	}

	if c := q.Get("cursor"); c != "" {
		p.cursor = []byte(c)
	}

	if l := q.Get("limit"); l != "" {
		limit, err := strconv.ParseUint(l, 10, 64)
		if err != nil {
			return errors.BadRequestParameter.Clone().SetData("limit", l)
		}
		if limit > DefaultMaxLimit {
			return errors.PageQueryLimitMaxExceed
		}
		p.limit = limit
	}

	return nil
}

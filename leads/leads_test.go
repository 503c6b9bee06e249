package leads_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-leads-client/internal/utils"
	"github.com/jrsteele09/go-leads-client/leads"
	"github.com/stretchr/testify/require"
)

func testLeads() []leads.Lead {
	return []leads.Lead{
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@engine.io", Company: "Analytical", Title: utils.Ptr("Founder")},
		{ID: 2, FirstName: "Grace", LastName: "Hopper", Email: "grace@navy.mil", Company: "US Navy"},
		{ID: 3, FirstName: "Alan", LastName: "Turing", Email: "alan@bletchley.uk", Company: "GC&CS", Title: utils.Ptr("Cryptanalyst")},
	}
}

func ids(ls []leads.Lead) []int {
	out := make([]int, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	cases := []struct {
		term string
		want []int
	}{
		{term: "", want: []int{1, 2, 3}},
		{term: "ada love", want: []int{1}},
		{term: "NAVY", want: []int{2}},
		{term: "bletchley", want: []int{3}},
		{term: "founder", want: []int{1}},
		{term: "a", want: []int{1, 2, 3}},
		{term: "nobody", want: []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			require.Equal(t, tc.want, ids(leads.Filter(testLeads(), tc.term)))
		})
	}
}

func TestLead_DecodeOptionalFields(t *testing.T) {
	raw := `{"id":7,"first_name":"Ada","last_name":"Lovelace","email":"a@b.c","company":"X","website_speed_web":91.5,"mail_sent":true}`

	var l leads.Lead
	require.NoError(t, json.Unmarshal([]byte(raw), &l))
	require.Equal(t, "Ada Lovelace", l.FullName())
	require.Empty(t, l.TitleOrEmpty())
	require.Empty(t, l.Website())
	require.Equal(t, 91.5, utils.Value(l.WebsiteSpeedWeb))
	require.Nil(t, l.WebsiteSpeedMobile)
	require.True(t, l.MailSent)
}

func TestPage(t *testing.T) {
	p := leads.Page{Number: 2, Size: 25}
	require.Equal(t, 50, p.Skip())
	require.Equal(t, 25, p.Limit())
	require.Equal(t, "limit=25&skip=50", p.Query().Encode())

	require.Equal(t, 0, leads.Page{}.Skip())
	require.Equal(t, leads.DefaultPageSize, leads.Page{}.Limit())
	require.Equal(t, leads.Page{Number: 0, Size: leads.DefaultPageSize}, leads.Page{Number: -3}.Prev())
	require.Equal(t, leads.Page{Number: 3, Size: 25}, p.Next())
	require.Equal(t, leads.Page{Number: 1, Size: 25}, p.Prev())
}

func TestColumnList(t *testing.T) {
	cols, err := leads.ColumnList(nil)
	require.NoError(t, err)
	require.Equal(t, "first_name,last_name,email,company,website_url", cols)

	cols, err = leads.ColumnList([]string{"punchline1", "email", " first_name", "email"})
	require.NoError(t, err)
	require.Equal(t, "first_name,email,punchline1", cols)

	_, err = leads.ColumnList([]string{"password"})
	require.ErrorContains(t, err, "password")
}

package campaign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/types"
)

func master(id, dist, customer, country string, date types.Value) types.Record {
	r := types.NewRecord(canon.MasterFields)
	r[canon.MasterRegistrationID] = types.String(id)
	r[canon.MasterDistributor] = types.String(dist)
	r[canon.MasterResale] = types.String(customer)
	r[canon.MasterCountry] = types.String(country)
	r[canon.MasterRegDate] = date
	return r
}

func lead(first, last, email, company string) types.Record {
	r := types.NewRecord(canon.LeadFields)
	r[canon.LeadFirstName] = types.String(first)
	r[canon.LeadLastName] = types.String(last)
	r[canon.LeadEmail] = types.String(email)
	r[canon.LeadCompany] = types.String(company)
	return r
}

func on(y int, m time.Month, d int) types.Value {
	return types.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "acme co ltd", Key("  ACME Co., Ltd. "))
	assert.Equal(t, "cafe", Key("Café"))
	assert.Equal(t, "", Key("---"))
}

func TestJaccardAndContains(t *testing.T) {
	assert.InDelta(t, 1.0, Jaccard("Acme Ltd", "acme ltd."), 1e-9)
	assert.InDelta(t, 1.0/3.0, Jaccard("Acme Ltd", "Acme Inc"), 1e-9)
	assert.Zero(t, Jaccard("", "Acme"))

	assert.True(t, Contains("Acme", "Acme Electronics Shenzhen"))
	assert.False(t, Contains("", "Acme"))
	assert.False(t, Contains("Globex", "Acme"))
}

func TestQuerySelect(t *testing.T) {
	rows := []types.Record{
		master("R1", "Arrow", "Acme", "China", on(2024, time.March, 1)),
		master("R2", "arrow ", "Acme", "CHINA", on(2024, time.March, 31)),
		master("R3", "Arrow", "Acme", "China", on(2024, time.April, 1)),
		master("R4", "Avnet", "Acme", "China", on(2024, time.March, 5)),
		master("R5", "Arrow", "Acme", "Japan", on(2024, time.March, 5)),
		master("R6", "Arrow", "Acme", "China", types.Null()),
	}

	q := Query{
		Start:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Days:        30,
		Distributor: "ARROW",
		Country:     "china",
	}
	got := q.Select(rows)
	require.Len(t, got, 2)
	assert.Equal(t, "R1", got[0].Text(canon.MasterRegistrationID))
	assert.Equal(t, "R2", got[1].Text(canon.MasterRegistrationID))
}

func TestMatchLeads(t *testing.T) {
	regs := []types.Record{
		master("R1", "Arrow", "Acme Electronics", "China", on(2024, time.March, 1)),
		master("R2", "Arrow", "Globex Corp", "China", on(2024, time.March, 2)),
	}
	leads := []types.Record{
		lead("Ann", "Lee", "ann@acme.example", "Acme"),
		lead("", "", "", "Globex Corp"),
		lead("Bo", "Chan", "bo@initech.example", "Initech"),
	}

	matches := MatchLeads(regs, leads, DefaultThreshold)
	require.Len(t, matches, 2)

	assert.Equal(t, "Globex Corp", matches[0].Customer())
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
	assert.Equal(t, Unknown, matches[0].Contact())
	assert.Equal(t, Unknown, matches[0].Email())

	assert.Equal(t, "Acme Electronics", matches[1].Customer())
	assert.InDelta(t, ContainmentScore, matches[1].Score, 1e-9)
	assert.Equal(t, "Ann Lee", matches[1].Contact())
}

func TestRun(t *testing.T) {
	regs := []types.Record{
		master("R1", "Arrow", "Acme", "China", on(2024, time.March, 1)),
		master("R2", "Arrow", "Acme Shenzhen", "China", on(2024, time.March, 2)),
		master("R3", "Avnet", "Acme", "China", on(2024, time.March, 2)),
	}
	leads := []types.Record{
		lead("Ann", "Lee", "ann@acme.example", "Acme"),
	}

	res := Run(Query{
		Start:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Days:        7,
		Distributor: "Arrow",
	}, regs, leads)

	assert.Len(t, res.Selected, 2)
	assert.Len(t, res.Matches, 2)
	assert.Equal(t, 1, res.MatchedLeads)
	assert.Equal(t, "R1", res.Matches[0].Master.Text(canon.MasterRegistrationID))
}

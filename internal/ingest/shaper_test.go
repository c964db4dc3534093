package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/distiviz/internal/canon"
	"github.com/ginjaninja78/distiviz/internal/config"
	"github.com/ginjaninja78/distiviz/internal/types"
)

func dregTable() *canon.Table { return registry.Table(types.DatasetDregs) }

func TestShapeDregRows(t *testing.T) {
	sheet := FlatSheet{
		Headers: []string{"Reg ID", "Distributor", "Region", "Resale Customer", "Registration Date", "Approval Date", "3Y Revenue", "Comment"},
		Rows: [][]string{
			{"R1", " Arrow ", "ap", "Acme", "45366", "15/03/2024", "1,500", ""},
			{"R2", "", "AP", "Nobody", "", "", "", ""},
			{"R3", "Avnet", "AP", "dummy - do not use for tracking", "", "", "", ""},
			{"R4", "WPG", "EMEA", "Euro", "", "", "", ""},
			{"R5", "Future", "", "Blank Region", "soon", "", "n/a", ""},
		},
	}

	records := ShapeDregRows(sheet, dregTable(), DefaultDregOptions())
	require.Len(t, records, 2)

	first := records[0]
	assert.Len(t, first, len(canon.DregFields))
	assert.Equal(t, "R1", first.Text(canon.DregRegistrationID))
	assert.Equal(t, "Arrow", first.Text(canon.DregDistributor))
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), first[canon.DregRegDate].Time())
	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), first[canon.DregApprovalDate].Time())
	assert.Equal(t, 1500.0, first[canon.DregRevenue].Num())
	assert.Equal(t, "", first.Text(canon.DregSegment))

	second := records[1]
	assert.Equal(t, "Future", second.Text(canon.DregDistributor))
	assert.True(t, second[canon.DregRegDate].IsNull())
	assert.True(t, second[canon.DregApprovalDate].IsNull())
	assert.Equal(t, types.KindNumber, second[canon.DregRevenue].Kind())
	assert.Zero(t, second[canon.DregRevenue].Num())
}

func TestShapeDregRowsSentinelOutsideMappedColumns(t *testing.T) {
	sheet := FlatSheet{
		Headers: []string{"Distributor", "Region", "Internal Notes"},
		Rows: [][]string{
			{"Arrow", "AP", DefaultDummySentinel},
			{DefaultDummySentinel, "AP", ""},
		},
	}

	records := ShapeDregRows(sheet, dregTable(), DefaultDregOptions())
	require.Len(t, records, 1)
	assert.Equal(t, "Arrow", records[0].Text(canon.DregDistributor))
}

func TestShapeDregRowsRegionFilterDisabled(t *testing.T) {
	sheet := FlatSheet{
		Headers: []string{"Distributor", "Region"},
		Rows:    [][]string{{"WPG", "EMEA"}, {"Arrow", "AP"}},
	}
	records := ShapeDregRows(sheet, dregTable(), DregOptions{})
	assert.Len(t, records, 2)

	records = ShapeDregRows(sheet, dregTable(), DregOptions{AllowedRegion: "emea"})
	require.Len(t, records, 1)
	assert.Equal(t, "WPG", records[0].Text(canon.DregDistributor))
}

func TestShapeDregRowsWithoutDistributorColumn(t *testing.T) {
	sheet := FlatSheet{Headers: []string{"Resale Customer"}, Rows: [][]string{{"Acme"}}}
	assert.Empty(t, ShapeDregRows(sheet, dregTable(), DefaultDregOptions()))
}

func TestShapeAppsFlatRows(t *testing.T) {
	sheet := FlatSheet{
		Headers: []string{"Region", "Distributor", "ID", "Confidence"},
		Rows: [][]string{
			{"APAC", "Arrow", "A1", "80"},
			{"", "", "", ""},
			{"EMEA", "Future", "A2", "unknown"},
		},
	}
	records := ShapeAppsFlatRows(sheet, appsTable())
	require.Len(t, records, 2)
	assert.Equal(t, 80.0, records[0][canon.AppsConfidence].Num())
	assert.Equal(t, "", records[1].Text(canon.AppsConfidence))
	assert.Equal(t, "", records[1].Text(canon.AppsLevel3))
}

func TestShapeCampaignRows(t *testing.T) {
	master := FlatSheet{
		Headers: []string{"Reg ID", "Main Distributor", "Reg Date", "End Customer", "Country"},
		Rows: [][]string{
			{"R1", "Arrow", "2024-01-10", "Acme Corp", "Japan"},
			{"", "Arrow", "2024-01-11", "", "Japan"},
			{"", "", "", "Solo Customer", ""},
		},
	}
	rows := ShapeMasterRows(master, registry.Table(types.DatasetCampaignMaster))
	require.Len(t, rows, 2)
	assert.Equal(t, "R1", rows[0].Text(canon.MasterRegistrationID))
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), rows[0][canon.MasterRegDate].Time())
	assert.Equal(t, "Solo Customer", rows[1].Text(canon.MasterResale))

	leads := FlatSheet{
		Headers: []string{"First Name", "Surname", "E-Mail", "Company Name"},
		Rows:    [][]string{{"Ann", "Lee", "ann@acme.test", "ACME"}, {"", "", "", ""}},
	}
	got := ShapeLeadRows(leads, registry.Table(types.DatasetCampaignLeads))
	require.Len(t, got, 1)
	assert.Equal(t, "ACME", got[0].Text(canon.LeadCompany))
	assert.Equal(t, "ann@acme.test", got[0].Text(canon.LeadEmail))
}

func TestTransformer(t *testing.T) {
	tr, err := NewTransformer([]config.TransformationRule{
		{Field: "Distributor", Actions: []config.TransformationAction{
			{Type: "trim"},
			{Type: "lookup", LookupTable: map[string]string{"ARROW ASIA": "Arrow"}},
		}},
		{Field: "Segment", Actions: []config.TransformationAction{
			{Type: "regex_replace", Find: `\s*\(.*\)$`, Value: ""},
			{Type: "default", Value: "Unassigned"},
		}},
		{Field: "3-Year Revenue", Actions: []config.TransformationAction{{Type: "uppercase"}}},
	})
	require.NoError(t, err)

	records := []types.Record{
		{"Distributor": types.String(" arrow asia "), "Segment": types.String("Auto (EV)"), "3-Year Revenue": types.Number(5)},
		{"Distributor": types.String("Avnet"), "Segment": types.String("")},
	}
	tr.Apply(records)

	assert.Equal(t, "Arrow", records[0].Text("Distributor"))
	assert.Equal(t, "Auto", records[0].Text("Segment"))
	assert.Equal(t, 5.0, records[0]["3-Year Revenue"].Num())
	assert.Equal(t, "Avnet", records[1].Text("Distributor"))
	assert.Equal(t, "Unassigned", records[1].Text("Segment"))

	_, err = NewTransformer([]config.TransformationRule{
		{Field: "Segment", Actions: []config.TransformationAction{{Type: "regex_replace", Find: "("}}},
	})
	assert.Error(t, err)
}

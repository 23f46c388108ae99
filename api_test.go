package stylist_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/stylist"
	"github.com/npillmayer/stylist/sheetdbg"
	"github.com/stretchr/testify/require"
)

func TestSheetDump(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "stylist.sheet")
	defer teardown()
	//
	sheet := stylist.New()
	_, err := sheet.RegisterStyle(stylist.Styles{
		{Key: "color", Value: "red"},
		{Key: "@media print", Value: stylist.Styles{
			{Key: "display", Value: "none"},
		}},
	})
	require.NoError(t, err)
	_, err = sheet.RegisterKeyframes(stylist.Styles{
		{Key: "from", Value: stylist.Styles{{Key: "opacity", Value: 0}}},
		{Key: "to", Value: stylist.Styles{{Key: "opacity", Value: 1}}},
	})
	require.NoError(t, err)

	dump := sheetdbg.Print(sheet)
	t.Logf("\n%s", dump)
	require.True(t, strings.HasPrefix(dump, "Sheet("+sheet.ID()),
		"dump must lead with the sheet identity")
	require.Contains(t, dump, "@media print")
	require.Contains(t, dump, "@keyframes")
}

func ExampleSheet_RegisterRule() {
	sheet := stylist.New()
	err := sheet.RegisterRule("body", stylist.Styles{
		{Key: "margin", Value: 0},
		{Key: "color", Value: "black"},
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(sheet.CSS())
	// Output: body{color:black;margin:0px}
}

package treediff_test

import (
	"fmt"

	"github.com/AndreyAkinshin/treediff/pkg/treediff"
)

func ExampleCompare() {
	expected, _ := treediff.ParseJSON([]byte(`{"items":[{"sku":"A-1","price":1.5,"in_stock":"TRUE"}]}`))
	actual, _ := treediff.ParseJSON([]byte(`{"items":[{"sku":"A-1","price":1.25,"in_stock":true}]}`))

	report, err := treediff.Compare(expected, actual, treediff.DefaultPolicy())
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, m := range report.Mismatches() {
		fmt.Println(m)
	}
	// Output: $.items[0].price: numeric mismatch: difference 0.25 (expected=1.5, actual=1.25)
}

func ExampleCompareAny() {
	policy, _ := treediff.NewPolicy(treediff.WithLenientKeys())
	report, _ := treediff.CompareAny(
		map[string]any{"qty": "3", "ok": "TRUE"},
		map[string]any{"qty": 3, "ok": true, "sku": "A-1"},
		policy,
	)
	fmt.Println(report.Match())
	// Output: true
}

package store

import (
	"testing"

	"github.com/rickgao/coindcx-tracker/internal/model"
)

func TestMarketStore_PutAllAndGet(t *testing.T) {
	s := NewMarketStore()

	s.PutAll([]model.MarketDetail{
		{Name: "BTCINR", Pair: "I-BTC_INR", OrderTypes: []string{"limit_order"}},
		{Name: "ETHBTC", Pair: "B-ETH_BTC"},
	})

	d, ok := s.Get("BTCINR")
	if !ok {
		t.Fatal("market not found")
	}
	if d.Pair != "I-BTC_INR" {
		t.Errorf("Pair = %q, want %q", d.Pair, "I-BTC_INR")
	}

	pair, ok := s.Pair("ETHBTC")
	if !ok {
		t.Fatal("pair not found")
	}
	if pair != "B-ETH_BTC" {
		t.Errorf("Pair(ETHBTC) = %q, want %q", pair, "B-ETH_BTC")
	}

	if _, ok := s.Pair("NONEXISTENT"); ok {
		t.Error("expected pair not found")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestMarketStore_NamesSorted(t *testing.T) {
	s := NewMarketStore()
	s.PutAll([]model.MarketDetail{
		{Name: "XRPINR", Pair: "I-XRP_INR"},
		{Name: "BTCINR", Pair: "I-BTC_INR"},
	})

	names := s.Names()
	if len(names) != 2 || names[0] != "BTCINR" || names[1] != "XRPINR" {
		t.Errorf("Names() = %v, want [BTCINR XRPINR]", names)
	}

	list := s.List()
	if len(list) != 2 || list[0].Name != "BTCINR" {
		t.Errorf("List() = %v, want BTCINR first", list)
	}
}

func TestMarketStore_PairFollowsDetail(t *testing.T) {
	s := NewMarketStore()
	s.PutAll([]model.MarketDetail{{Name: "BTCINR", Pair: "I-BTC_INR"}})
	s.PutAll([]model.MarketDetail{{Name: "BTCINR", Pair: "I-BTC_INR2"}})

	pair, _ := s.Pair("BTCINR")
	d, _ := s.Get("BTCINR")
	if pair != d.Pair {
		t.Errorf("Pair() = %q but detail pair = %q", pair, d.Pair)
	}
	if pair != "I-BTC_INR2" {
		t.Errorf("Pair() = %q, want %q", pair, "I-BTC_INR2")
	}
}

func TestMarketStore_CopyIsolation(t *testing.T) {
	s := NewMarketStore()

	lev := 5.0
	in := []model.MarketDetail{{
		Name:        "BTCINR",
		Pair:        "I-BTC_INR",
		OrderTypes:  []string{"limit_order"},
		MaxLeverage: &lev,
	}}
	s.PutAll(in)

	in[0].OrderTypes[0] = "mutated"
	lev = 99

	got, _ := s.Get("BTCINR")
	if got.OrderTypes[0] != "limit_order" {
		t.Errorf("OrderTypes[0] = %q, want %q", got.OrderTypes[0], "limit_order")
	}
	if *got.MaxLeverage != 5 {
		t.Errorf("MaxLeverage = %v, want 5", *got.MaxLeverage)
	}

	got.OrderTypes[0] = "mutated again"
	again, _ := s.Get("BTCINR")
	if again.OrderTypes[0] != "limit_order" {
		t.Errorf("OrderTypes[0] = %q after mutating copy, want %q", again.OrderTypes[0], "limit_order")
	}
}

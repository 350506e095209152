package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// menuItem is one product the floor terminal can log.
type menuItem struct {
	Key    string
	Name   string
	Weight decimal.Decimal
	Drain  bool
}

var menu = []menuItem{
	{Key: "1", Name: "Dark Chocolate Bar", Weight: decimal.RequireFromString("0.05")},
	{Key: "2", Name: "Tablea Pack", Weight: decimal.RequireFromString("0.20")},
	{Key: "3", Name: "Cocoa Powder", Weight: decimal.RequireFromString("0.50")},
	{Key: "4", Name: "DEMO NUKE (Crisis)", Weight: decimal.RequireFromString("500")},
	{Key: "5", Name: "AUTO-DRAIN (Real-Time Sim)", Drain: true},
}

const drainProduct = "Continuous Production"

func lookup(key string) (menuItem, bool) {
	key = strings.TrimSpace(key)
	for _, item := range menu {
		if item.Key == key {
			return item, true
		}
	}
	return menuItem{}, false
}

// totalKg converts a unit count into kilograms of beans.
func (m menuItem) totalKg(count int) (decimal.Decimal, error) {
	if m.Drain {
		return decimal.Zero, fmt.Errorf("%s has no unit weight", m.Name)
	}
	if count <= 0 {
		return decimal.Zero, fmt.Errorf("quantity must be a positive whole number")
	}
	return m.Weight.Mul(decimal.NewFromInt(int64(count))), nil
}

func (m menuItem) String() string {
	if m.Drain {
		return fmt.Sprintf(" [%s] %s", m.Key, m.Name)
	}
	return fmt.Sprintf(" [%s] %s \t(-%skg)", m.Key, m.Name, m.Weight.String())
}

package app

import (
	"context"
	"errors"
	"strings"

	"github.com/tizlion/transfer-service/internal/domain"
)

var ErrBankNotFound = errors.New("bank not found")

// bankAliases maps common colloquial names for Nigerian banks onto the names
// used in the gateway's directory, so "gtb" finds Guaranty Trust Bank.
var bankAliases = map[string]string{
	"gtb":        "guaranty trust bank",
	"gtbank":     "guaranty trust bank",
	"gt bank":    "guaranty trust bank",
	"uba":        "united bank for africa",
	"first bank": "first bank of nigeria",
	"firstbank":  "first bank of nigeria",
	"stanbic":    "stanbic ibtc bank",
	"fcmb":       "first city monument bank",
	"access":     "access bank",
	"zenith":     "zenith bank",
	"union":      "union bank of nigeria",
	"sterling":   "sterling bank",
	"polaris":    "polaris bank",
	"keystone":   "keystone bank",
	"wema":       "wema bank",
	"fidelity":   "fidelity bank",
}

// FindBank resolves a user-supplied bank query (code, full name, alias, or
// fragment) to a single directory entry. Matching is tried strictest first:
// exact code, exact name, name prefix, then substring.
func (s *Service) FindBank(ctx context.Context, currency, query string) (*domain.Bank, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, ErrBankNotFound
	}

	banks, err := s.ListBanks(ctx, currency)
	if err != nil {
		return nil, err
	}

	for i := range banks {
		if banks[i].Code == trimmed {
			return &banks[i], nil
		}
	}

	normalized := strings.ToLower(trimmed)
	if alias, ok := bankAliases[normalized]; ok {
		normalized = alias
	}

	for i := range banks {
		if strings.ToLower(banks[i].Name) == normalized {
			return &banks[i], nil
		}
	}
	for i := range banks {
		if strings.HasPrefix(strings.ToLower(banks[i].Name), normalized) {
			return &banks[i], nil
		}
	}
	for i := range banks {
		if strings.Contains(strings.ToLower(banks[i].Name), normalized) {
			return &banks[i], nil
		}
	}

	return nil, ErrBankNotFound
}

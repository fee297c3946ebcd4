package app

import (
	"context"
	"errors"
	"testing"

	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

func bankDirectoryService() (*Service, *gatewayStub) {
	gateway := &gatewayStub{
		banks: []paystackclient.Bank{
			{Name: "Access Bank", Code: "044", Slug: "access-bank"},
			{Name: "Guaranty Trust Bank", Code: "058", Slug: "gtbank"},
			{Name: "United Bank For Africa", Code: "033", Slug: "united-bank-for-africa"},
			{Name: "Zenith Bank", Code: "057", Slug: "zenith-bank"},
			{Name: "Stanbic IBTC Bank", Code: "221", Slug: "stanbic-ibtc-bank"},
		},
	}
	return newTestService(&transferRepoStub{}, gateway, &publisherStub{}), gateway
}

func TestFindBank_ByExactCode(t *testing.T) {
	service, _ := bankDirectoryService()

	bank, err := service.FindBank(context.Background(), "NGN", "058")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if bank.Name != "Guaranty Trust Bank" {
		t.Fatalf("expected Guaranty Trust Bank, got %q", bank.Name)
	}
}

func TestFindBank_ByAlias(t *testing.T) {
	service, _ := bankDirectoryService()

	cases := map[string]string{
		"gtb":     "058",
		"GTBank":  "058",
		"uba":     "033",
		"stanbic": "221",
	}
	for query, wantCode := range cases {
		bank, err := service.FindBank(context.Background(), "NGN", query)
		if err != nil {
			t.Fatalf("query %q: expected nil error, got %v", query, err)
		}
		if bank.Code != wantCode {
			t.Fatalf("query %q: expected code %s, got %s", query, wantCode, bank.Code)
		}
	}
}

func TestFindBank_ByNamePrefixAndFragment(t *testing.T) {
	service, _ := bankDirectoryService()

	bank, err := service.FindBank(context.Background(), "NGN", "zen")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if bank.Code != "057" {
		t.Fatalf("expected Zenith Bank for prefix query, got %q", bank.Name)
	}

	bank, err = service.FindBank(context.Background(), "NGN", "ibtc")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if bank.Code != "221" {
		t.Fatalf("expected Stanbic IBTC Bank for fragment query, got %q", bank.Name)
	}
}

func TestFindBank_UnknownQuery(t *testing.T) {
	service, _ := bankDirectoryService()

	if _, err := service.FindBank(context.Background(), "NGN", "bank of narnia"); !errors.Is(err, ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
	if _, err := service.FindBank(context.Background(), "NGN", "   "); !errors.Is(err, ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound for blank query, got %v", err)
	}
}

package app

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

func TestGatewayEventConsumer_AcksVerifiedCharge(t *testing.T) {
	gateway := &gatewayStub{
		verifyTxnResult: &paystackclient.Transaction{ID: 5, Reference: "chg_ok", Amount: 150000, Currency: "NGN", Status: "success", Channel: "bank_transfer"},
	}
	publisher := &publisherStub{}
	consumer := NewGatewayEventConsumer(newTestService(&transferRepoStub{}, gateway, publisher))

	if !consumer.HandleChargeSuccess([]byte(`{"reference":"chg_ok"}`)) {
		t.Fatal("expected verified charge to be acked")
	}
	if len(publisher.verifiedEvents) != 1 || publisher.verifiedEvents[0].Reference != "chg_ok" {
		t.Fatalf("expected verified event for chg_ok, got %+v", publisher.verifiedEvents)
	}
}

func TestGatewayEventConsumer_DropsMalformedPayload(t *testing.T) {
	gateway := &gatewayStub{}
	consumer := NewGatewayEventConsumer(newTestService(&transferRepoStub{}, gateway, &publisherStub{}))

	if !consumer.HandleChargeSuccess([]byte(`{not json`)) {
		t.Fatal("expected malformed payload to be dropped, not re-queued")
	}
	if gateway.verifyTxnCalled {
		t.Fatal("expected no gateway call for malformed payload")
	}
}

func TestGatewayEventConsumer_DropsMissingReference(t *testing.T) {
	gateway := &gatewayStub{}
	consumer := NewGatewayEventConsumer(newTestService(&transferRepoStub{}, gateway, &publisherStub{}))

	if !consumer.HandleChargeSuccess([]byte(`{"reference":"  "}`)) {
		t.Fatal("expected empty reference to be dropped")
	}
	if gateway.verifyTxnCalled {
		t.Fatal("expected no gateway call for empty reference")
	}
}

func TestGatewayEventConsumer_DropsRejectedReference(t *testing.T) {
	gateway := &gatewayStub{
		verifyTxnErr: &paystackclient.APIError{Kind: paystackclient.ErrorKindClient, Message: "Transaction reference not found", StatusCode: http.StatusNotFound},
	}
	publisher := &publisherStub{}
	consumer := NewGatewayEventConsumer(newTestService(&transferRepoStub{}, gateway, publisher))

	if !consumer.HandleChargeSuccess([]byte(`{"reference":"chg_unknown"}`)) {
		t.Fatal("expected definitively rejected reference to be dropped")
	}
	if len(publisher.verifiedEvents) != 0 {
		t.Fatalf("expected no events for rejected reference, got %+v", publisher.verifiedEvents)
	}
}

func TestGatewayEventConsumer_RequeuesOnTransientFailure(t *testing.T) {
	gateway := &gatewayStub{
		verifyTxnErr: &paystackclient.APIError{Kind: paystackclient.ErrorKindNetwork, Message: "network error during API call"},
	}
	consumer := NewGatewayEventConsumer(newTestService(&transferRepoStub{}, gateway, &publisherStub{}))

	if consumer.HandleChargeSuccess([]byte(`{"reference":"chg_retry"}`)) {
		t.Fatal("expected transient verification failure to re-queue the delivery")
	}
}

func TestGatewayEventConsumer_RequeuesWhenPublishFails(t *testing.T) {
	gateway := &gatewayStub{
		verifyTxnResult: &paystackclient.Transaction{ID: 6, Reference: "chg_pub", Amount: 1000, Status: "success"},
	}
	publisher := &publisherStub{publishErr: errors.New("amqp channel closed")}
	consumer := NewGatewayEventConsumer(newTestService(&transferRepoStub{}, gateway, publisher))

	if consumer.HandleChargeSuccess([]byte(`{"reference":"chg_pub"}`)) {
		t.Fatal("expected publish failure to re-queue the delivery")
	}
}

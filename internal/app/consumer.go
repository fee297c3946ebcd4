package app

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/tizlion/transfer-service/internal/domain"
	"github.com/tizlion/transfer-service/pkg/paystackclient"
)

// GatewayEventConsumer handles deliveries from the webhook gateway's queue.
// The webhook edge only forwards the charge reference; all facts are
// re-verified against the gateway before anything is announced downstream.
type GatewayEventConsumer struct {
	service *Service
}

func NewGatewayEventConsumer(service *Service) *GatewayEventConsumer {
	return &GatewayEventConsumer{service: service}
}

// HandleChargeSuccess processes one charge notification. Returning false
// re-queues the delivery.
func (c *GatewayEventConsumer) HandleChargeSuccess(body []byte) bool {
	var event domain.ChargeSuccessEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("charge-consumer: failed to unmarshal payload: %v", err)
		return true
	}

	if strings.TrimSpace(event.Reference) == "" {
		log.Printf("charge-consumer: missing reference in event; dropping")
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := c.service.HandleChargeSuccess(ctx, event); err != nil {
		if apiErr, ok := paystackclient.AsAPIError(err); ok &&
			(apiErr.Kind == paystackclient.ErrorKindClient || apiErr.Kind == paystackclient.ErrorKindDomain) {
			// The gateway definitively rejected the reference; redelivery
			// cannot change that.
			log.Printf("charge-consumer: gateway rejected reference %s: %v; dropping", event.Reference, err)
			return true
		}
		log.Printf("charge-consumer: processing error for reference %s: %v; re-queuing", event.Reference, err)
		return false
	}

	return true
}

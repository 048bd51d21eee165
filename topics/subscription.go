package topics

import (
	"fmt"

	"github.com/com4-wkflws/shopify/webhook"
)

/* Subscription enables a Shopify topic for dispatch
 * Target overrides the catalog's default trigger target when set
 */
type Subscription struct {
	Topic   string
	Target  string
	Enabled bool
}

// Validate checks the subscription against the known topics
func (s *Subscription) Validate(catalog map[string]webhook.Descriptor) error {
	if s.Topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if _, ok := catalog[s.Topic]; !ok {
		return fmt.Errorf("topic %s is not supported", s.Topic)
	}
	if s.Target == "" {
		return fmt.Errorf("target cannot be empty for topic %s", s.Topic)
	}
	return nil
}

// Descriptor returns the catalog descriptor routed to this subscription's target
func (s *Subscription) Descriptor(catalog map[string]webhook.Descriptor) webhook.Descriptor {
	return catalog[s.Topic].WithTarget(s.Target)
}

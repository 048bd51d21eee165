package topics

import (
	"fmt"
	"os"
	"sort"

	"github.com/com4-wkflws/shopify/webhook"
	"gopkg.in/yaml.v3"
)

/* Loader manages topic subscriptions from topics.yaml
 * Without a file every catalog topic is enabled with its default target
 */

// Config represents the structure of topics.yaml
type Config struct {
	Topics []SubscriptionConfig `yaml:"topics"`
}

// SubscriptionConfig represents a single topic in the YAML file
type SubscriptionConfig struct {
	Topic   string `yaml:"topic"`
	Target  string `yaml:"target"`  // Default: the catalog target
	Enabled *bool  `yaml:"enabled"` // Default: true
}

// Loader holds the loaded subscriptions
type Loader struct {
	catalog       map[string]webhook.Descriptor
	subscriptions map[string]*Subscription
}

// NewLoader creates a loader for the given catalog, webhook.Catalog() when empty
func NewLoader(catalog ...webhook.Descriptor) *Loader {
	if len(catalog) == 0 {
		catalog = webhook.Catalog()
	}
	l := &Loader{
		catalog:       make(map[string]webhook.Descriptor, len(catalog)),
		subscriptions: make(map[string]*Subscription, len(catalog)),
	}
	for _, d := range catalog {
		l.catalog[d.Topic] = d
		l.subscriptions[d.Topic] = &Subscription{Topic: d.Topic, Target: d.Target, Enabled: true}
	}
	return l
}

// Load reads and parses the topics.yaml file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading topics file: %w", err)
	}
	return l.Parse(data)
}

// Parse replaces the subscriptions with the ones in data. Topics missing
// from data are disabled.
func (l *Loader) Parse(data []byte) error {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing topics YAML: %w", err)
	}

	subscriptions := make(map[string]*Subscription, len(config.Topics))
	for _, sc := range config.Topics {
		if _, dup := subscriptions[sc.Topic]; dup {
			return fmt.Errorf("validating topic: topic %s listed more than once", sc.Topic)
		}

		sub := &Subscription{
			Topic:   sc.Topic,
			Target:  sc.Target,
			Enabled: sc.Enabled == nil || *sc.Enabled,
		}
		if sub.Target == "" {
			sub.Target = l.catalog[sc.Topic].Target
		}

		if err := sub.Validate(l.catalog); err != nil {
			return fmt.Errorf("validating topic: %w", err)
		}
		subscriptions[sub.Topic] = sub
	}

	l.subscriptions = subscriptions
	return nil
}

// Get retrieves a subscription by topic
func (l *Loader) Get(topic string) (*Subscription, error) {
	sub, exists := l.subscriptions[topic]
	if !exists {
		return nil, fmt.Errorf("topic not found: %s", topic)
	}
	return sub, nil
}

// List returns all loaded subscriptions ordered by topic
func (l *Loader) List() []*Subscription {
	subs := make([]*Subscription, 0, len(l.subscriptions))
	for _, sub := range l.subscriptions {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Topic < subs[j].Topic })
	return subs
}

// Descriptors returns the enabled subscriptions as dispatcher descriptors
func (l *Loader) Descriptors() []webhook.Descriptor {
	var out []webhook.Descriptor
	for _, sub := range l.List() {
		if sub.Enabled {
			out = append(out, sub.Descriptor(l.catalog))
		}
	}
	return out
}

// Exists checks if a topic is subscribed
func (l *Loader) Exists(topic string) bool {
	_, exists := l.subscriptions[topic]
	return exists
}

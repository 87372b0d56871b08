package service

import (
	"strings"

	"mathquest/internal/domain/model"

	"github.com/gosimple/slug"
)

var primary5Topics = []string{
	"Whole Numbers",
	"Four Operations of Whole Numbers",
	"Fractions",
	"Fraction of a Set",
	"Multiplication of Fractions",
	"Division of Fractions",
	"Decimals",
	"Percentage",
	"Ratio",
	"Rate",
	"Average",
	"Area of Triangle",
	"Volume of Cube and Cuboid",
	"Angles",
	"Properties of Triangles",
	"Money",
	"Time",
	"Length and Mass",
}

// Catalog is the fixed list of topics problems can be generated for.
type Catalog struct {
	topics []model.Topic
	byKey  map[string]model.Topic
}

// NewCatalog keys each display name by its slug. Duplicate slugs keep the first name.
func NewCatalog(names []string) *Catalog {
	c := &Catalog{byKey: make(map[string]model.Topic, len(names))}
	for _, name := range names {
		t := model.Topic{Key: slug.Make(name), Name: name}
		if _, dup := c.byKey[t.Key]; dup || t.Key == "" {
			continue
		}
		c.byKey[t.Key] = t
		c.topics = append(c.topics, t)
	}
	return c
}

func DefaultCatalog() *Catalog {
	return NewCatalog(primary5Topics)
}

func (c *Catalog) Topics() []model.Topic {
	out := make([]model.Topic, len(c.topics))
	copy(out, c.topics)
	return out
}

func (c *Catalog) Lookup(key string) (model.Topic, bool) {
	t, ok := c.byKey[strings.ToLower(strings.TrimSpace(key))]
	return t, ok
}

// TopicService lists the catalog.
type TopicService struct {
	catalog *Catalog
}

func NewTopicService(catalog *Catalog) *TopicService {
	return &TopicService{catalog: catalog}
}

func (s *TopicService) ListTopics() []model.Topic {
	return s.catalog.Topics()
}

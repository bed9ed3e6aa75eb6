package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalogs/*.yaml catalogs/schema.json
var catalogFS embed.FS

const schemaName = "prompt-catalog.json"

var catalogSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	data, err := catalogFS.ReadFile("catalogs/schema.json")
	if err != nil {
		return nil, fmt.Errorf("prompts: read schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("prompts: load schema: %w", err)
	}
	schema, err := compiler.Compile(schemaName)
	if err != nil {
		return nil, fmt.Errorf("prompts: compile schema: %w", err)
	}
	return schema, nil
})

// Catalog is the prompt set of one page.
type Catalog struct {
	Version    int          `yaml:"version" json:"version"`
	Page       Page         `yaml:"page" json:"page"`
	Categories []Category   `yaml:"categories" json:"categories"`
	Prompts    []PromptItem `yaml:"prompts" json:"prompts"`

	byID map[string]int
}

// ParseCatalog validates a YAML catalog against the embedded schema and
// decodes it. Prompt ids must be unique within the catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	schema, err := catalogSchema()
	if err != nil {
		return nil, err
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("prompts: parse catalog: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON types only.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("prompts: normalize catalog: %w", err)
	}
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("prompts: normalize catalog: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("prompts: catalog failed validation: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("prompts: decode catalog: %w", err)
	}
	c.byID = make(map[string]int, len(c.Prompts))
	for i, p := range c.Prompts {
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("prompts: duplicate prompt id %q in %s catalog", p.ID, c.Page)
		}
		c.byID[p.ID] = i
	}
	return &c, nil
}

// Groups returns the categories in display order, each with its prompts in
// catalog order. Empty categories are dropped and prompts whose category is
// not listed are never shown.
func (c *Catalog) Groups() []Group {
	groups := make([]Group, 0, len(c.Categories))
	for _, cat := range c.Categories {
		g := Group{Key: cat.Key, Label: cat.Label}
		for _, p := range c.Prompts {
			if p.Category == cat.Key {
				g.Prompts = append(g.Prompts, p)
			}
		}
		if len(g.Prompts) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Lookup finds a prompt by id.
func (c *Catalog) Lookup(id string) (PromptItem, bool) {
	i, ok := c.byID[id]
	if !ok {
		return PromptItem{}, false
	}
	return c.Prompts[i], true
}

// Library holds the catalog of every page.
type Library struct {
	catalogs map[Page]*Catalog
}

// LoadLibrary parses the embedded catalogs.
func LoadLibrary() (*Library, error) {
	lib := &Library{catalogs: make(map[Page]*Catalog, len(Pages))}
	for _, page := range Pages {
		data, err := catalogFS.ReadFile("catalogs/" + string(page) + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("prompts: read %s catalog: %w", page, err)
		}
		c, err := ParseCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", page, err)
		}
		if c.Page != page {
			return nil, fmt.Errorf("prompts: catalog file %s declares page %q", page, c.Page)
		}
		lib.catalogs[page] = c
	}
	return lib, nil
}

// Catalog returns the catalog for page.
func (l *Library) Catalog(page Page) (*Catalog, error) {
	c, ok := l.catalogs[page]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}
	return c, nil
}

// Lookup searches every catalog for id.
func (l *Library) Lookup(id string) (PromptItem, bool) {
	for _, page := range Pages {
		if c, ok := l.catalogs[page]; ok {
			if p, found := c.Lookup(id); found {
				return p, true
			}
		}
	}
	return PromptItem{}, false
}

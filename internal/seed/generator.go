package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GeneratorConfig drives the synthetic dataset generator.
type GeneratorConfig struct {
	NumUsers    int
	NumPins     int
	MaxViewers  int
	ShareChance float64
	Seed        int64
}

// DefaultGeneratorConfig returns settings for a graph small enough to eyeball.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		NumUsers:    50,
		NumPins:     200,
		MaxViewers:  5,
		ShareChance: 0.4,
		Seed:        42,
	}
}

// Generator produces synthetic users and pins.
type Generator struct {
	cfg  GeneratorConfig
	rand *rand.Rand
}

// NewGenerator returns a Generator, filling unset fields from the defaults.
func NewGenerator(cfg GeneratorConfig) *Generator {
	def := DefaultGeneratorConfig()
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = def.NumUsers
	}
	if cfg.NumPins <= 0 {
		cfg.NumPins = def.NumPins
	}
	if cfg.MaxViewers <= 0 {
		cfg.MaxViewers = def.MaxViewers
	}
	if cfg.ShareChance < 0 {
		cfg.ShareChance = 0
	}
	if cfg.ShareChance > 1 {
		cfg.ShareChance = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Generator{cfg: cfg, rand: rand.New(rand.NewSource(cfg.Seed))}
}

// Generate synthesises a valid Dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	users := make([]User, g.cfg.NumUsers)
	for i := range users {
		first := firstNames[g.rand.Intn(len(firstNames))]
		last := lastNames[g.rand.Intn(len(lastNames))]
		id := fmt.Sprintf("USR-%05d", i+1)
		users[i] = User{
			ID:    id,
			Name:  first + " " + last,
			Email: fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	pins := make([]Pin, g.cfg.NumPins)
	for i := range pins {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		ownerIdx := g.rand.Intn(len(users))
		created := now.Add(-time.Duration(g.rand.Intn(365*24)) * time.Hour)
		pin := Pin{
			ID:         fmt.Sprintf("PIN-%06d", i+1),
			Title:      fmt.Sprintf("%s %s", adjectives[g.rand.Intn(len(adjectives))], topics[g.rand.Intn(len(topics))]),
			OwnerID:    users[ownerIdx].ID,
			Visibility: "PUBLIC",
			CreatedAt:  &created,
		}
		if len(users) > 1 && g.rand.Float64() < g.cfg.ShareChance {
			pin.Visibility = "PRIVATE"
			pin.SharedWith = g.viewers(users, ownerIdx)
		}
		pins[i] = pin
	}

	return Dataset{Users: users, Pins: pins}, nil
}

// viewers picks distinct users other than the owner.
func (g *Generator) viewers(users []User, ownerIdx int) []string {
	n := 1 + g.rand.Intn(g.cfg.MaxViewers)
	if n > len(users)-1 {
		n = len(users) - 1
	}
	seen := map[int]struct{}{ownerIdx: {}}
	out := make([]string, 0, n)
	for len(out) < n {
		idx := g.rand.Intn(len(users))
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, users[idx].ID)
	}
	return out
}

// WriteDataset serializes ds as indented JSON to path, creating parent
// directories as needed.
func WriteDataset(ds Dataset, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ds); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

var (
	firstNames = []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia"}
	lastNames  = []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Nguyen", "Silva", "Lee"}
	adjectives = []string{"Cozy", "Minimal", "Rustic", "Bright", "Vintage", "Quick", "Weekend"}
	topics     = []string{"kitchen ideas", "hiking trails", "pasta recipes", "reading nooks", "garden layouts", "travel packing lists"}
)

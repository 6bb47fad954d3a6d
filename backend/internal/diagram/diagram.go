// Package diagram turns characters and relationships into a positioned node/edge graph.
//
// Build is pure: the same ordered input always yields the same output, so results can be
// compared directly in tests.
package diagram

import (
	"math"

	"go.uber.org/zap"

	"lore-keeper/backend/internal/models"
	"lore-keeper/backend/pkg/logger"
)

// Layout describes the circle nodes are placed on
type Layout struct {
	Radius  float64 `json:"radius" yaml:"radius"`
	CenterX float64 `json:"center_x" yaml:"center_x"`
	CenterY float64 `json:"center_y" yaml:"center_y"`
}

// DefaultLayout matches the relationship view of the web client
var DefaultLayout = Layout{Radius: 300, CenterX: 400, CenterY: 300}

// Position is a point on the canvas
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is one character
type Node struct {
	ID       string      `json:"id" yaml:"id"`
	Label    string      `json:"label" yaml:"label"`
	Role     models.Role `json:"role" yaml:"role"`
	Position Position    `json:"position" yaml:"position"`
}

// Edge is one relationship, labelled with its relation type
type Edge struct {
	ID       string `json:"id" yaml:"id"`
	Source   string `json:"source" yaml:"source"`
	Target   string `json:"target" yaml:"target"`
	Label    string `json:"label" yaml:"label"`
	SelfLoop bool   `json:"self_loop,omitempty" yaml:"self_loop,omitempty"`
}

// Graph is the builder output. Nodes follow the input character order; edges follow the
// input relationship order minus dropped ones.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Build lays characters out on DefaultLayout
func Build(characters []models.Character, relationships []models.Relationship) Graph {
	return BuildWithLayout(DefaultLayout, characters, relationships)
}

// BuildWithLayout places node i at angle 2πi/N on the layout circle and keeps every
// relationship whose endpoints are both present. Relationships pointing at unknown
// characters are dropped and logged.
func BuildWithLayout(layout Layout, characters []models.Character, relationships []models.Relationship) Graph {
	g := Graph{
		Nodes: make([]Node, 0, len(characters)),
		Edges: make([]Edge, 0, len(relationships)),
	}

	n := len(characters)
	present := make(map[string]struct{}, n)
	for i, c := range characters {
		theta := 2 * math.Pi * float64(i) / float64(n)
		g.Nodes = append(g.Nodes, Node{
			ID:    c.ID,
			Label: c.Name,
			Role:  c.Role,
			Position: Position{
				X: layout.Radius*math.Cos(theta) + layout.CenterX,
				Y: layout.Radius*math.Sin(theta) + layout.CenterY,
			},
		})
		present[c.ID] = struct{}{}
	}

	for _, r := range relationships {
		_, okSource := present[r.SourceCharacterID]
		_, okTarget := present[r.TargetCharacterID]
		if !okSource || !okTarget {
			logger.Get().Warn("Dropping relationship with unknown endpoint",
				zap.String("relationship_id", r.ID),
				zap.String("source", r.SourceCharacterID),
				zap.String("target", r.TargetCharacterID),
			)
			continue
		}
		g.Edges = append(g.Edges, Edge{
			ID:       r.ID,
			Source:   r.SourceCharacterID,
			Target:   r.TargetCharacterID,
			Label:    r.RelationType,
			SelfLoop: r.SelfLoop(),
		})
	}

	return g
}

// Node returns the node with the given id
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

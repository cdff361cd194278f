package agent

import (
	"context"
	"fmt"

	"arcana-be/internal/pkg/logger"
)

// End terminates the run when a node returns it as the next step.
const End = "end"

// NodeFunc executes one step and names the next node, or End.
type NodeFunc func(ctx context.Context, st *State) (string, error)

// Graph is a named-node state machine with at most one visit per node,
// which bounds every run to a handful of model calls.
type Graph struct {
	nodes map[string]NodeFunc
	entry string
	log   logger.ILogger
}

func NewGraph(entry string, log logger.ILogger) *Graph {
	return &Graph{
		nodes: make(map[string]NodeFunc),
		entry: entry,
		log:   log,
	}
}

func (g *Graph) AddNode(name string, fn NodeFunc) {
	g.nodes[name] = fn
}

// Run walks the graph from the entry node until a node routes to End.
// A route to an unknown node or a repeat visit aborts the run.
func (g *Graph) Run(ctx context.Context, st *State) error {
	visited := make(map[string]bool, len(g.nodes))
	current := g.entry

	for current != End {
		if err := ctx.Err(); err != nil {
			return err
		}
		if visited[current] {
			return fmt.Errorf("agent graph revisited node %q", current)
		}
		fn, ok := g.nodes[current]
		if !ok {
			return fmt.Errorf("agent graph has no node %q", current)
		}
		visited[current] = true

		next, err := fn(ctx, st)
		if err != nil {
			return err
		}

		g.log.Debug("agent_graph", "node completed", map[string]interface{}{
			"node": current,
			"next": next,
		})
		current = next
	}
	return nil
}

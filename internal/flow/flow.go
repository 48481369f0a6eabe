// Package flow implements the question-graph core: ordered traversal,
// structural validation, adjacency derivation, and conditional button
// logic.
package flow

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/DheerG/LogicPull/internal/models"
)

// DFS returns the qids reachable from start in pre-order depth-first
// order. Children are visited in the order their edges appear in the
// node's buttons. Cycles are cut with a visited set; each reachable
// node appears exactly once, unreachable nodes not at all.
func DFS(start string, nodes models.NodeMap) []string {
	ordered := make([]string, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))

	var visit func(qid string)
	visit = func(qid string) {
		node, ok := nodes[qid]
		if !ok || visited[qid] {
			return
		}
		visited[qid] = true
		ordered = append(ordered, qid)

		for _, b := range node.Buttons {
			visit(b.Destination)
		}
	}

	visit(start)
	return ordered
}

// Validate checks the structural invariants of an interview graph:
// the start node exists, every button destination names an existing
// qid, and every button condition compiles.
func Validate(start string, nodes models.NodeMap) error {
	if _, ok := nodes[start]; !ok {
		return fmt.Errorf("start node %q does not exist", start)
	}

	for qid, node := range nodes {
		for _, b := range node.Buttons {
			if _, ok := nodes[b.Destination]; !ok {
				return fmt.Errorf("node %q points at missing destination %q", qid, b.Destination)
			}
			if b.Condition != "" {
				if _, err := expr.Compile(b.Condition, expr.AsBool()); err != nil {
					return fmt.Errorf("node %q has an invalid condition on path %q: %w", qid, b.PID, err)
				}
			}
		}
	}

	return nil
}

// Adjacency derives a weight-1 adjacency view of the graph from the
// node buttons. The node map stays the single source of truth for
// edges; this view is recomputed rather than maintained.
func Adjacency(nodes models.NodeMap) map[string]map[string]int {
	graph := make(map[string]map[string]int, len(nodes))

	for qid, node := range nodes {
		edges := make(map[string]int, len(node.Buttons))
		for _, b := range node.Buttons {
			edges[b.Destination] = 1
		}
		graph[qid] = edges
	}

	return graph
}

// NextDestination picks the destination of the first button whose
// condition holds for the given answers. Buttons without a condition
// always match. An empty result means the node is terminal for this
// answer set.
func NextDestination(node models.QuestionNode, answers map[string]any) (string, error) {
	for _, b := range node.Buttons {
		if b.Condition == "" {
			return b.Destination, nil
		}

		match, err := evaluateExpression(b.Condition, answers)
		if err != nil {
			return "", err
		}

		if match {
			return b.Destination, nil
		}
	}

	return "", nil
}

func evaluateExpression(expression string, input map[string]any) (bool, error) {
	program, err := expr.Compile(expression, expr.Env(input))
	if err != nil {
		return false, err
	}

	output, err := expr.Run(program, input)
	if err != nil {
		return false, err
	}

	result, ok := output.(bool)

	if !ok {
		return false, errors.New("expression did not return a boolean")
	}

	return result, nil
}

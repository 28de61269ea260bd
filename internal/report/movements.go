package report

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/flemzord/junction/internal/intersection"
)

// Turn classifies a movement through the intersection.
type Turn string

// Movement kinds, from the driver's point of view.
const (
	TurnStraight Turn = "straight"
	TurnLeft     Turn = "left"
	TurnRight    Turn = "right"
	TurnUTurn    Turn = "u-turn"
)

// Movement counts the vehicles that entered from one approach and left
// towards one direction.
type Movement struct {
	From  intersection.Direction `json:"from"`
	To    intersection.Direction `json:"to"`
	Turn  Turn                   `json:"turn"`
	Count int                    `json:"count"`
}

// exitOffset separates exit nodes from approach nodes, so a u-turn is an
// ordinary edge rather than a self-loop.
const exitOffset = 100

// Movements builds the turning-movement graph of the vehicles that passed:
// one node per approach, one per exit, edges weighted by vehicle count.
func Movements(records []intersection.Record) []Movement {
	g := simple.NewWeightedDirectedGraph(0, 0)

	for _, r := range records {
		if !r.Passed || !r.Arrival.Valid() || !r.Departure.Valid() {
			continue
		}
		from := simple.Node(int64(r.Arrival))
		to := simple.Node(int64(r.Departure) + exitOffset)

		weight := 1.0
		if e := g.WeightedEdge(from.ID(), to.ID()); e != nil {
			weight += e.Weight()
		}
		g.SetWeightedEdge(g.NewWeightedEdge(from, to, weight))
	}

	var out []Movement
	edges := g.WeightedEdges()
	for edges.Next() {
		e := edges.WeightedEdge()
		from := intersection.Direction(e.From().ID())
		to := intersection.Direction(e.To().ID() - exitOffset)
		out = append(out, Movement{
			From:  from,
			To:    to,
			Turn:  Classify(from, to),
			Count: int(e.Weight()),
		})
	}

	slices.SortFunc(out, func(a, b Movement) int {
		return cmp.Or(cmp.Compare(a.From, b.From), cmp.Compare(a.To, b.To))
	})
	return out
}

// Classify names the turn a vehicle makes when it enters from "from" and
// leaves towards "to". A vehicle coming from the North heads South, so
// leaving towards the West is a right turn.
func Classify(from, to intersection.Direction) Turn {
	switch to {
	case from:
		return TurnUTurn
	case opposite(from):
		return TurnStraight
	case rightOf(from):
		return TurnRight
	default:
		return TurnLeft
	}
}

func opposite(d intersection.Direction) intersection.Direction {
	switch d {
	case intersection.North:
		return intersection.South
	case intersection.South:
		return intersection.North
	case intersection.East:
		return intersection.West
	default:
		return intersection.East
	}
}

// rightOf returns the exit on the right of a vehicle entering from d.
func rightOf(d intersection.Direction) intersection.Direction {
	switch d {
	case intersection.North:
		return intersection.West
	case intersection.South:
		return intersection.East
	case intersection.East:
		return intersection.North
	default:
		return intersection.South
	}
}

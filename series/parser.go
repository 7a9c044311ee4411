package series

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

func trimSpace(parts []string) []string {
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// Parse splits a series expression like "AAPL | avg 30s | add 1.5" into the
// input series name and the operator pipeline applied to it.
func Parse(s string, start time.Time) (string, Operator, error) {
	if len(s) == 0 {
		return "", nil, errors.New("empty series")
	}

	mainParts := trimSpace(strings.Split(s, "|"))

	var symbol string
	{
		symbolParts := trimSpace(strings.Fields(mainParts[0]))
		if len(symbolParts) != 1 {
			return "", nil, errors.New("invalid series name")
		}
		symbol = symbolParts[0]
	}

	switch len(mainParts) {
	case 1:
		return symbol, Identity{}, nil
	case 2:
		op, err := parseFunction(start, mainParts[1])
		return symbol, op, err
	default:
		op, err := parseChain(start, mainParts[1:])
		return symbol, op, err
	}
}

func parseFunction(
	start time.Time,
	def string,
) (Operator, error) {
	functionParts := trimSpace(strings.Fields(def))

	if len(functionParts) == 0 {
		return nil, errors.New("invalid number of function parameters")
	}

	functionName := functionParts[0]
	switch functionName {
	case "avg":
		if len(functionParts) != 2 {
			return nil, errors.New("avg: invalid number of function parameters")
		}
		duration, err := time.ParseDuration(functionParts[1])
		if err != nil {
			return nil, errors.Wrap(err, "parse duration")
		}
		if duration <= 0 {
			return nil, errors.New("avg: duration must be positive")
		}
		return NewWindowAvg(duration, start), nil
	case "gt":
		if len(functionParts) != 2 {
			return nil, errors.New("gt: invalid number of function parameters")
		}
		x, err := strconv.ParseFloat(functionParts[1], 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid float")
		}
		return OpGt{X: x}, nil
	case "add":
		if len(functionParts) != 2 {
			return nil, errors.New("add: invalid number of function parameters")
		}
		x, err := strconv.ParseFloat(functionParts[1], 64)
		if err != nil {
			return nil, errors.Wrap(err, "invalid float")
		}
		return OpAdd{X: x}, nil
	default:
		return nil, errors.New("unknown function name")
	}
}

func parseChain(
	start time.Time,
	defs []string,
) (Operator, error) {
	var ops []Operator

	for _, def := range defs {
		op, err := parseFunction(start, def)
		if err != nil {
			return nil, errors.Wrap(err, "parse function")
		}
		ops = append(ops, op)
	}

	return chain{ops: ops}, nil
}

// Package script parses the scripted order-flow format used to drive
// the engine: one action per line (add, modify, cancel) followed by a
// terminal result line asserting the book's final shape.
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"kestrel/internal/common"
)

var (
	ErrMissingResult = errors.New("script has no result line")
	ErrResultNotLast = errors.New("result line must be last")
)

type ActionType int

const (
	Add ActionType = iota
	Modify
	Cancel
)

// Action is one decoded script record. Fields beyond the ones a record
// type carries are zero.
type Action struct {
	Type      ActionType
	OrderType common.OrderType
	Side      common.Side
	Price     common.Price
	Quantity  common.Quantity
	OrderID   common.OrderID
}

// Result is the terminal assertion: total resting orders and the number
// of occupied levels per side.
type Result struct {
	Total     int
	BidLevels int
	AskLevels int
}

// ParseFile reads a script from disk. See Parse.
func ParseFile(path string) ([]Action, Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Result{}, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse decodes a script. Action lines that do not parse are skipped,
// matching a live feed's tolerance for junk; the result line is
// mandatory and must be the final record.
func Parse(r io.Reader) ([]Action, Result, error) {
	var (
		actions     []Action
		result      Result
		resultFound bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if resultFound {
			return nil, Result{}, ErrResultNotLast
		}

		if strings.HasPrefix(line, "R") {
			parsed, err := parseResult(line)
			if err != nil {
				return nil, Result{}, err
			}
			result = parsed
			resultFound = true
			continue
		}

		action, err := parseAction(line)
		if err != nil {
			// Unparsable action records are skipped, not fatal.
			continue
		}
		actions = append(actions, action)
	}
	if err := scanner.Err(); err != nil {
		return nil, Result{}, fmt.Errorf("read script: %w", err)
	}
	if !resultFound {
		return nil, Result{}, ErrMissingResult
	}
	return actions, result, nil
}

func parseAction(line string) (Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Action{}, errors.New("empty record")
	}

	switch fields[0] {
	case "A":
		if len(fields) != 6 {
			return Action{}, fmt.Errorf("add record needs 6 fields, got %d", len(fields))
		}
		side, err := common.ParseSide(fields[1])
		if err != nil {
			return Action{}, err
		}
		orderType, err := common.ParseOrderType(fields[2])
		if err != nil {
			return Action{}, err
		}
		price, err := parsePrice(fields[3])
		if err != nil {
			return Action{}, err
		}
		quantity, err := parseQuantity(fields[4])
		if err != nil {
			return Action{}, err
		}
		id, err := parseOrderID(fields[5])
		if err != nil {
			return Action{}, err
		}
		return Action{
			Type:      Add,
			OrderType: orderType,
			Side:      side,
			Price:     price,
			Quantity:  quantity,
			OrderID:   id,
		}, nil

	case "M":
		if len(fields) != 5 {
			return Action{}, fmt.Errorf("modify record needs 5 fields, got %d", len(fields))
		}
		id, err := parseOrderID(fields[1])
		if err != nil {
			return Action{}, err
		}
		side, err := common.ParseSide(fields[2])
		if err != nil {
			return Action{}, err
		}
		price, err := parsePrice(fields[3])
		if err != nil {
			return Action{}, err
		}
		quantity, err := parseQuantity(fields[4])
		if err != nil {
			return Action{}, err
		}
		return Action{
			Type:     Modify,
			Side:     side,
			Price:    price,
			Quantity: quantity,
			OrderID:  id,
		}, nil

	case "C":
		if len(fields) != 2 {
			return Action{}, fmt.Errorf("cancel record needs 2 fields, got %d", len(fields))
		}
		id, err := parseOrderID(fields[1])
		if err != nil {
			return Action{}, err
		}
		return Action{Type: Cancel, OrderID: id}, nil
	}
	return Action{}, fmt.Errorf("unknown record %q", fields[0])
}

func parseResult(line string) (Result, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return Result{}, fmt.Errorf("result record needs 4 fields, got %d", len(fields))
	}
	total, err := strconv.Atoi(fields[1])
	if err != nil {
		return Result{}, fmt.Errorf("result total: %w", err)
	}
	bidLevels, err := strconv.Atoi(fields[2])
	if err != nil {
		return Result{}, fmt.Errorf("result bid levels: %w", err)
	}
	askLevels, err := strconv.Atoi(fields[3])
	if err != nil {
		return Result{}, fmt.Errorf("result ask levels: %w", err)
	}
	return Result{Total: total, BidLevels: bidLevels, AskLevels: askLevels}, nil
}

func parsePrice(str string) (common.Price, error) {
	value, err := strconv.ParseInt(str, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", str, err)
	}
	return common.Price(value), nil
}

func parseQuantity(str string) (common.Quantity, error) {
	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q: %w", str, err)
	}
	return common.Quantity(value), nil
}

func parseOrderID(str string) (common.OrderID, error) {
	value, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("order id %q: %w", str, err)
	}
	return common.OrderID(value), nil
}

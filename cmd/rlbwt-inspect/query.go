package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-rlbwt/pkg/rlbwt"
)

var errQuery = errors.New("bad query")

const queryHelp = "rank <sym> <row> | select <sym> <k> | access <row> | count <sym>"

// parseSymbol accepts a single character or a 0xNN hex byte.
func parseSymbol(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 8)
		if err == nil {
			return byte(v), nil
		}
	}
	return 0, fmt.Errorf("%w: symbol %q", errQuery, s)
}

func parseNumber(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: number %q", errQuery, s)
	}
	return v, nil
}

// evalQuery runs one query line against e.
func evalQuery(e *rlbwt.Engine, line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", fmt.Errorf("%w: %s", errQuery, queryHelp)
	}

	want := map[string]int{"rank": 3, "select": 3, "access": 2, "count": 2}
	n, ok := want[args[0]]
	if !ok || len(args) != n {
		return "", fmt.Errorf("%w: %s", errQuery, queryHelp)
	}

	switch args[0] {
	case "access":
		row, err := parseNumber(args[1])
		if err != nil {
			return "", err
		}
		if row == e.EmPos() {
			return fmt.Sprintf("access(%d) = end marker", row), nil
		}
		sym, ok := e.Access(row)
		if !ok {
			return "", fmt.Errorf("%w: row %d is past the last row %d", errQuery, row, e.LenWithEm()-1)
		}
		return fmt.Sprintf("access(%d) = %s", row, rlbwt.SymbolName(sym)), nil
	}

	sym, err := parseSymbol(args[1])
	if err != nil {
		return "", err
	}
	switch args[0] {
	case "count":
		return fmt.Sprintf("count(%s) = %d", rlbwt.SymbolName(sym), e.Count(sym)), nil
	case "rank":
		row, err := parseNumber(args[2])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("rank(%s, %d) = %d", rlbwt.SymbolName(sym), row, e.Rank(sym, row)), nil
	default:
		k, err := parseNumber(args[2])
		if err != nil {
			return "", err
		}
		row, ok := e.Select(sym, k)
		if !ok {
			return "", fmt.Errorf("%w: %s occurs %d times", errQuery, rlbwt.SymbolName(sym), e.Count(sym))
		}
		return fmt.Sprintf("select(%s, %d) = row %d", rlbwt.SymbolName(sym), k, row), nil
	}
}

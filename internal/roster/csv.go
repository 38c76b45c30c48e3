// Package roster ingests league sign-up sheets. The sheets arrive as
// CSV exports with inconsistent headers ("MMR:", "Draft Value",
// trailing spaces), so column matching is deliberately forgiving.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"pst-draft-bot/internal/auction"
)

// BankFormula converts a captain's own rating into their auction
// budget. Stronger captains get less money to spend.
func BankFormula(mmr float64) int {
	return int(10000 - mmr*100)
}

// ParsePlayers reads a player sign-up sheet. Rows without a name are
// skipped. The result is sorted by descending rating.
func ParsePlayers(r io.Reader) ([]auction.Player, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	var players []auction.Player
	for i, row := range rows {
		name := row.get("name")
		if name == "" {
			continue
		}
		rawMMR := row.first("mmr", "draft value")
		if rawMMR == "" {
			return nil, fmt.Errorf("row %d (%s): no mmr or draft value column", i+2, name)
		}
		mmr, err := parseFractionSum(rawMMR)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i+2, name, err)
		}
		players = append(players, auction.Player{Name: name, MMR: mmr})
	}
	sort.SliceStable(players, func(i, j int) bool { return players[i].MMR > players[j].MMR })
	return players, nil
}

// ParseCaptains reads a captain sign-up sheet. A money column is used
// directly when present; otherwise the budget is derived from the
// captain's rating via BankFormula. Sorted by descending budget.
func ParseCaptains(r io.Reader) ([]auction.Captain, error) {
	rows, err := readSheet(r)
	if err != nil {
		return nil, err
	}
	var captains []auction.Captain
	for i, row := range rows {
		name := row.get("name")
		if name == "" {
			continue
		}
		var dollars int
		if raw := row.first("dollars", "money"); raw != "" {
			dollars, err = strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): bad money value %q", i+2, name, raw)
			}
		} else if raw := row.first("mmr", "draft value"); raw != "" {
			mmr, err := parseFractionSum(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): %w", i+2, name, err)
			}
			dollars = BankFormula(mmr)
		} else {
			return nil, fmt.Errorf("row %d (%s): no money, mmr or draft value column", i+2, name)
		}
		captains = append(captains, auction.Captain{Name: name, Dollars: dollars})
	}
	sort.SliceStable(captains, func(i, j int) bool { return captains[i].Dollars > captains[j].Dollars })
	return captains, nil
}

// LoadPlayersFile reads a player sheet from disk.
func LoadPlayersFile(path string) ([]auction.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open player sheet: %w", err)
	}
	defer f.Close()
	return ParsePlayers(f)
}

// LoadCaptainsFile reads a captain sheet from disk.
func LoadCaptainsFile(path string) ([]auction.Captain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open captain sheet: %w", err)
	}
	defer f.Close()
	return ParseCaptains(f)
}

// row maps normalized column names to cell values.
type row map[string]string

func (r row) get(col string) string {
	return strings.TrimSpace(r[col])
}

func (r row) first(cols ...string) string {
	for _, c := range cols {
		if v := r.get(c); v != "" {
			return v
		}
	}
	return ""
}

// normalizeHeader lowercases a column name and strips the decorations
// the sheet exports carry ("Name:", "Pos 4: ").
func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.TrimSuffix(h, ":")
	return strings.ToLower(strings.TrimSpace(h))
}

func readSheet(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = normalizeHeader(header[i])
	}

	var rows []row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		m := make(row, len(header))
		for i, cell := range record {
			if i < len(header) {
				m[header[i]] = cell
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}

// parseFractionSum evaluates a draft value written as space-separated
// terms, each a decimal or a fraction: "4 1/2" means 4.5.
func parseFractionSum(s string) (float64, error) {
	total := new(big.Rat)
	for _, term := range strings.Fields(s) {
		r, ok := new(big.Rat).SetString(term)
		if !ok {
			return 0, fmt.Errorf("bad draft value term %q", term)
		}
		total.Add(total, r)
	}
	f, _ := total.Float64()
	return f, nil
}

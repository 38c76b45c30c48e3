package roster

import (
	"strings"
	"testing"
)

func TestParsePlayersSortsByRating(t *testing.T) {
	sheet := strings.Join([]string{
		"name,MMR:",
		"toth,4500",
		"milan,4200",
		"",
		"squid,4800",
	}, "\n")

	players, err := ParsePlayers(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("parsed %d players, want 3", len(players))
	}
	if players[0].Name != "squid" || players[0].MMR != 4800 {
		t.Fatalf("top player = %+v, want squid at 4800", players[0])
	}
	if players[2].Name != "milan" {
		t.Fatalf("bottom player = %s, want milan", players[2].Name)
	}
}

func TestParsePlayersSkipsBlankNames(t *testing.T) {
	sheet := "name,mmr\n,4000\ntoth,4500\n"
	players, err := ParsePlayers(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(players) != 1 || players[0].Name != "toth" {
		t.Fatalf("players = %+v, want only toth", players)
	}
}

func TestParsePlayersFractionalDraftValue(t *testing.T) {
	sheet := "name,Draft Value\ntoth,4 1/2\n"
	players, err := ParsePlayers(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if players[0].MMR != 4.5 {
		t.Fatalf("draft value = %v, want 4.5", players[0].MMR)
	}
}

func TestParseCaptainsDerivesBankFromRating(t *testing.T) {
	sheet := "name,Draft Value\nCev,90\nyfu,92\n"
	captains, err := ParseCaptains(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// 10000 - 90*100 = 1000; weaker captain gets the bigger bank.
	if captains[0].Name != "Cev" || captains[0].Dollars != 1000 {
		t.Fatalf("top captain = %+v, want Cev with $1000", captains[0])
	}
	if captains[1].Dollars != 800 {
		t.Fatalf("yfu bank = %d, want 800", captains[1].Dollars)
	}
}

func TestParseCaptainsMoneyColumnWins(t *testing.T) {
	sheet := "Name:,Money:\nCev,750\n"
	captains, err := ParseCaptains(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if captains[0].Dollars != 750 {
		t.Fatalf("bank = %d, want 750 from money column", captains[0].Dollars)
	}
}

func TestParseBadValueReportsRow(t *testing.T) {
	sheet := "name,mmr\ntoth,not-a-number\n"
	if _, err := ParsePlayers(strings.NewReader(sheet)); err == nil {
		t.Fatal("bad mmr value parsed without error")
	}
}

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/nrstats/internal/model"
	"github.com/pable/nrstats/internal/report"
	"github.com/pable/nrstats/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("nrstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("nrstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <id-prefix> [--phase cut]")
				continue
			}
			phase := model.PhaseSwiss
			for i := 1; i+1 < len(args); i++ {
				if args[i] == "--phase" {
					p, ok := model.ParsePhase(args[i+1])
					if !ok {
						cError.Fprintf(os.Stderr, "invalid phase %q\n", args[i+1])
						continue
					}
					phase = p
				}
			}
			if err := shellShow(db, args[0], phase); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "rounds":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: rounds <id-prefix>")
				continue
			}
			shellRounds(db, args[0])
		case "trend":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: trend <identity>")
				continue
			}
			shellTrend(db, strings.Join(args, " "))
		case "player":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: player <name>")
				continue
			}
			shellPlayer(db, strings.Join(args, " "))
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored tournaments"},
		{"show <id-prefix>", "show a tournament's swiss stats"},
		{"show <id-prefix> --phase cut", "same, for the elimination cut"},
		{"rounds <id-prefix>", "game-by-game listing"},
		{"trend <identity>", "an identity across tournaments"},
		{"player <name>", "a player's tournament history"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) {
	list, err := db.ListTournaments()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(list) == 0 {
		cMuted.Println("No tournaments stored yet.")
		return
	}
	report.PrintTournamentList(os.Stdout, list)
}

func shellShow(db *storage.DB, prefix string, phase model.Phase) error {
	s, err := db.GetTournamentByPrefix(prefix)
	if err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("no tournament found with prefix %q", prefix)
	}
	return showTournament(db, s.ID, phase)
}

func shellRounds(db *storage.DB, prefix string) {
	s, err := db.GetTournamentByPrefix(prefix)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if s == nil {
		fmt.Fprintf(os.Stderr, "no tournament found with prefix %q\n", prefix)
		return
	}
	_, rounds, err := db.LoadTournament(s.ID)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintTournamentSummary(os.Stdout, *s)
	report.PrintRoundsTable(os.Stdout, rounds, 0)
}

func shellTrend(db *storage.DB, identity string) {
	points, err := db.GetIdentityTrend(identity)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(points) == 0 {
		cMuted.Println("no tournaments found")
		return
	}
	report.PrintIdentityTrendTable(os.Stdout, identity, points)
}

func shellPlayer(db *storage.DB, name string) {
	hist, err := db.GetPlayerHistory(name)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(hist) == 0 {
		fmt.Fprintf(os.Stderr, "no data for player %q\n", name)
		return
	}
	report.PrintPlayerHistoryTable(os.Stdout, hist)
}

// Command familyquery loads a FamilyInfo (defaults, overridable by env
// vars and an optional YAML file) and answers one-shot genealogical
// queries against it, printing the result to standard output. It has no
// network surface and holds no state between invocations; every query is
// computed fresh from its arguments.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/solsword/anarchy/internal/family"
)

func main() {
	log.Println("========================================")
	log.Println("Family Query")
	log.Println("========================================")
	log.Println()

	cfg := LoadConfig()

	if cfg.ConfigPath != "" {
		log.Printf("Waiting for config overlay at %s...\n", cfg.ConfigPath)
		if err := waitForConfigFile(context.Background(), cfg.ConfigPath, cfg.ConfigWaitTimeout); err != nil {
			log.Fatalf("Config overlay unavailable: %v", err)
		}
		data, err := os.ReadFile(cfg.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to read config overlay: %v", err)
		}
		if err := applyYAMLOverlay(&cfg, data); err != nil {
			log.Fatalf("Failed to parse config overlay: %v", err)
		}
		log.Println("✅ config overlay applied")
	}

	info, err := BuildFamilyInfo(cfg)
	if err != nil {
		log.Fatalf("Invalid family configuration: %v", err)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	if err := runQuery(info, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: familyquery <command> [args...]

commands:
  birthdate <person>
  first-born-on <day>
  mother <person>
  mother-and-index <person>
  child <person> <nth>
  num-children <person>
  partner <person> <nth>
  num-partners <person>`)
}

func runQuery(info family.FamilyInfo, command string, args []string) error {
	switch command {
	case "birthdate":
		person, err := parseArg(args, 0, "person")
		if err != nil {
			return err
		}
		fmt.Println(family.Birthdate(info, person))

	case "first-born-on":
		day, err := parseArg(args, 0, "day")
		if err != nil {
			return err
		}
		printPerson(family.FirstBornOn(info, day))

	case "mother":
		person, err := parseArg(args, 0, "person")
		if err != nil {
			return err
		}
		printPerson(family.Mother(info, person))

	case "mother-and-index":
		person, err := parseArg(args, 0, "person")
		if err != nil {
			return err
		}
		mother, index := family.MotherAndIndex(info, person)
		printPerson(mother)
		fmt.Println(index)

	case "child":
		person, nth, err := parsePair(args, "person", "nth")
		if err != nil {
			return err
		}
		printPerson(family.Child(info, person, nth))

	case "num-children":
		person, err := parseArg(args, 0, "person")
		if err != nil {
			return err
		}
		fmt.Println(family.NumChildren(info, person))

	case "partner":
		person, nth, err := parsePair(args, "person", "nth")
		if err != nil {
			return err
		}
		printPerson(family.NthPartner(info, person, nth))

	case "num-partners":
		person, err := parseArg(args, 0, "person")
		if err != nil {
			return err
		}
		fmt.Println(family.NumPartners(info, person))

	default:
		usage()
		return fmt.Errorf("unrecognized command %q", command)
	}

	return nil
}

func printPerson(person family.Id) {
	if person == family.None {
		fmt.Println("NONE")
		return
	}
	fmt.Println(person)
}

func parseArg(args []string, index int, name string) (family.Id, error) {
	if index >= len(args) {
		return 0, fmt.Errorf("missing %s argument", name)
	}
	n, err := strconv.ParseUint(args[index], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, args[index], err)
	}
	return n, nil
}

func parsePair(args []string, firstName, secondName string) (family.Id, family.Id, error) {
	first, err := parseArg(args, 0, firstName)
	if err != nil {
		return 0, 0, err
	}
	second, err := parseArg(args, 1, secondName)
	if err != nil {
		return 0, 0, err
	}
	return first, second, nil
}

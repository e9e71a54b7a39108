// Command tablegen reads a raw distribution vector (one relative weight
// per line; blank lines and lines starting with # are skipped) from an
// input file and writes out
// the artifact cmd/familyquery loads as a FamilyInfo's age-of-mother
// distribution. Build the artifact once, serve it many times.
package main

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type tableArtifact struct {
	AgeOfMotherDistribution []float64 `yaml:"age_of_mother_distribution"`
	AgeOfMotherMultiplier   uint64    `yaml:"age_of_mother_multiplier"`
}

func main() {
	log.Println("========================================")
	log.Println("Family Table Generator")
	log.Println("========================================")

	cfg := LoadConfig()
	log.Printf("Configuration: input_path=%s, output_path=%s, multiplier=%d\n",
		cfg.InputPath, cfg.OutputPath, cfg.Multiplier)

	waitForInput(cfg.InputPath, cfg.InputWaitTimeout)

	log.Printf("Reading distribution vector from %s...\n", cfg.InputPath)
	dist, err := readDistribution(cfg.InputPath)
	if err != nil {
		log.Fatalf("Failed to read distribution: %v", err)
	}
	log.Printf("Read %d weighted entries\n", len(dist))

	artifact := tableArtifact{
		AgeOfMotherDistribution: dist,
		AgeOfMotherMultiplier:   cfg.Multiplier,
	}

	log.Printf("Writing table artifact to %s...\n", cfg.OutputPath)
	if err := writeArtifact(cfg.OutputPath, artifact); err != nil {
		log.Fatalf("Failed to write artifact: %v", err)
	}

	log.Println("✅ Table generation complete!")
}

func waitForInput(path string, timeout time.Duration) {
	log.Printf("Waiting for distribution file at %s...\n", path)

	if timeout <= 0 {
		if _, err := os.Stat(path); err != nil {
			log.Fatalf("Distribution file %s not found and timeout disabled", path)
		}
		log.Println("✅ distribution file found")
		return
	}

	start := time.Now()
	attempts := 0

	for {
		if _, err := os.Stat(path); err == nil {
			log.Println("✅ distribution file found")
			return
		}

		attempts++
		if attempts%10 == 0 {
			elapsed := time.Since(start)
			log.Printf("  Still waiting... (%ds/%ds)\n", int(elapsed.Seconds()), int(timeout.Seconds()))
		}

		if time.Since(start) >= timeout {
			log.Fatalf("Timeout waiting for distribution file at %s", path)
		}

		time.Sleep(time.Second)
	}
}

func readDistribution(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dist []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		w, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, err
		}
		dist = append(dist, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return dist, nil
}

func writeArtifact(path string, artifact tableArtifact) error {
	data, err := yaml.Marshal(artifact)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

package runner

import (
	"strings"
)

// Scenario names one execution strategy.
type Scenario string

const (
	ScenarioSync             Scenario = "sync"
	ScenarioAsync            Scenario = "async"
	ScenarioParallel         Scenario = "parallel"
	ScenarioFileRead         Scenario = "fileRead"
	ScenarioFileReadProgress Scenario = "fileReadProgress"
	ScenarioBitcoin          Scenario = "bitcoin"
	ScenarioPrimes           Scenario = "primes"
	ScenarioPrimesParallel   Scenario = "primesParallel"
)

var allScenarios = []Scenario{
	ScenarioSync,
	ScenarioAsync,
	ScenarioParallel,
	ScenarioFileRead,
	ScenarioFileReadProgress,
	ScenarioBitcoin,
	ScenarioPrimes,
	ScenarioPrimesParallel,
}

// Short labels used by reports and accepted by ParseScenario.
var scenarioLabels = map[Scenario]string{
	ScenarioSync:             "Sync",
	ScenarioAsync:            "Async",
	ScenarioParallel:         "Par",
	ScenarioFileRead:         "Read",
	ScenarioFileReadProgress: "Read+Prog",
	ScenarioBitcoin:          "Bitcoin",
	ScenarioPrimes:           "Primes",
	ScenarioPrimesParallel:   "PrimesPar",
}

var scenarioAliases = func() map[string]Scenario {
	m := make(map[string]Scenario, len(allScenarios)*2)
	for _, s := range allScenarios {
		m[strings.ToLower(string(s))] = s
		m[strings.ToLower(scenarioLabels[s])] = s
	}
	m["file-read"] = ScenarioFileRead
	m["file-read-progress"] = ScenarioFileReadProgress
	m["primes-parallel"] = ScenarioPrimesParallel
	return m
}()

// AllScenarios returns every scenario in presentation order.
func AllScenarios() []Scenario {
	out := make([]Scenario, len(allScenarios))
	copy(out, allScenarios)
	return out
}

// ParseScenario resolves a scenario name or short label, ignoring case.
func ParseScenario(name string) (Scenario, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := scenarioAliases[key]; ok {
		return s, nil
	}
	return "", &ConfigError{Field: "scenario", Reason: "unknown scenario " + `"` + name + `"`}
}

func (s Scenario) String() string {
	return string(s)
}

// Label returns the short display label, e.g. "Par" for parallel.
func (s Scenario) Label() string {
	if l, ok := scenarioLabels[s]; ok {
		return l
	}
	return string(s)
}

// ReadsFiles reports whether the scenario enumerates the data directory.
func (s Scenario) ReadsFiles() bool {
	return s == ScenarioFileRead || s == ScenarioFileReadProgress
}

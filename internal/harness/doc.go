// Package harness runs linkage scenarios end to end.
//
// A scenario describes a small Master registry and Rosetta registry in YAML,
// runs the full link pipeline against them in memory, and checks the result
// with assertions and a golden copy of the rendered output.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	run_id: scenario-run-1        # optional, fixed for determinism
//	null_text: ""                 # optional, defaults to NULL
//	master:
//	  - {id: 1001, lahman: doeja01, first: Jane, last: Doe, retro: doej001, bbref: doeja01}
//	rosetta:
//	  - {id: 5, first: Jane, last: Doe}
//	  - {id: 6, first: John, last: Smith, set: {6: "777"}}
//	assertions:
//	  - type: outcome
//	    line: 2
//	    outcome: linked
//	    canonical_id: 1001
//	  - type: cell
//	    line: 2
//	    position: 8
//	    value: "1001"
//	  - type: outcome_count
//	    outcome: ambiguous
//	    count: 0
//	  - type: stats
//	    stats: {total: 2, linked: 1}
//
// Rosetta rows start with every identifier set to NULL; set overrides cells
// by position. Lines are numbered as in a file: the header is line 1 and the
// first Rosetta record is line 2.
//
// # Assertion Types
//
//   - outcome: the decision recorded for a line, optionally with its Master ID
//   - outcome_count: how many records ended with an outcome
//   - cell: one rendered output cell
//   - stats: a subset of the run statistics
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run ID and its own in-memory SQLite audit
// log, so outputs are byte-for-byte reproducible for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/unique_match.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness

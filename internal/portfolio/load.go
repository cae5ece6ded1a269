package portfolio

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// LoadFile reads and parses a portfolio JSON document from disk.
func LoadFile(path string) (*Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read portfolio file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a portfolio document. Unknown fields are ignored and
// optional fields take their documented defaults, so documents produced by
// older tooling (or by hand) stay loadable.
func Parse(data []byte) (*Portfolio, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(data)

	p := &Portfolio{}

	projects := doc.Get("projects")
	if !projects.IsArray() {
		return nil, fmt.Errorf("missing or non-array \"projects\" field")
	}

	var parseErr error
	projects.ForEach(func(_, item gjson.Result) bool {
		proj, err := parseProject(item)
		if err != nil {
			parseErr = err
			return false
		}
		p.Projects = append(p.Projects, proj)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	doc.Get("resource_pools").ForEach(func(_, item gjson.Result) bool {
		pool := ResourcePool{
			Location:       item.Get("location").String(),
			ResourceType:   item.Get("resource_type").String(),
			Capacity:       item.Get("capacity").Float(),
			CostMultiplier: item.Get("cost_multiplier").Float(),
			TimeZone:       item.Get("time_zone").String(),
		}
		if pool.CostMultiplier == 0 {
			pool.CostMultiplier = 1.0
		}
		p.Pools = append(p.Pools, pool)
		return true
	})

	caps := doc.Get("resource_capacity")
	if caps.IsObject() {
		p.Capacities = make(map[string]float64)
		caps.ForEach(func(key, value gjson.Result) bool {
			p.Capacities[key.String()] = value.Float()
			return true
		})
	}

	return p, nil
}

func parseProject(item gjson.Result) (Project, error) {
	proj := Project{
		ID:                item.Get("id").String(),
		DurationMonths:    item.Get("duration_months").Float(),
		PriorityScore:     item.Get("priority_score").Float(),
		StrategicValue:    item.Get("strategic_value").Float(),
		NPV:               item.Get("npv").Float(),
		Cost:              item.Get("cost").Float(),
		RiskScore:         item.Get("risk_score").Float(),
		PreferredLocation: item.Get("preferred_location").String(),
	}
	if proj.ID == "" {
		return proj, fmt.Errorf("project with missing or empty \"id\"")
	}
	if proj.DurationMonths < 0 {
		return proj, fmt.Errorf("project %s: negative duration", proj.ID)
	}

	item.Get("dependencies").ForEach(func(_, dep gjson.Result) bool {
		proj.Dependencies = append(proj.Dependencies, dep.String())
		return true
	})
	item.Get("allowed_locations").ForEach(func(_, loc gjson.Result) bool {
		proj.AllowedLocations = append(proj.AllowedLocations, loc.String())
		return true
	})

	reqs := item.Get("resource_requirements")
	if reqs.IsObject() {
		proj.Requirements = make(map[string]float64)
		reqs.ForEach(func(key, value gjson.Result) bool {
			proj.Requirements[key.String()] = value.Float()
			return true
		})
	}

	return proj, nil
}

package searchindex

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	filters "github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
)

// buildWhere translates a structured filter tree into the engine's predicate
// form. Per-field predicates are combined with And. Field rules:
//
//	list                      -> ContainsAny (field equals any element)
//	{"not": v|[v...]}         -> And of NotEqual per excluded element
//	{"range": {gt/gte/lt/lte}} -> And of the comparisons present
//	{"text": s}               -> Like *s*
//	{"geo": {lon,lat,radius}} -> WithinGeoRange
//	scalar                    -> Equal
//
// An operator object with no recognized key contributes no predicate for that
// field; the field is skipped rather than rejected. Returns nil when no field
// produced a usable condition.
func buildWhere(tree map[string]interface{}) *filters.WhereBuilder {
	if len(tree) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]*filters.WhereBuilder, 0, len(keys))
	for _, key := range keys {
		if c := fieldCondition(key, tree[key]); c != nil {
			conds = append(conds, c)
		}
	}
	return combineAnd(conds)
}

func combineAnd(conds []*filters.WhereBuilder) *filters.WhereBuilder {
	switch len(conds) {
	case 0:
		return nil
	case 1:
		return conds[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(conds)
	}
}

func fieldCondition(key string, value interface{}) *filters.WhereBuilder {
	switch v := value.(type) {
	case map[string]interface{}:
		if not, ok := v["not"]; ok {
			return notCondition(key, not)
		}
		if rng, ok := v["range"].(map[string]interface{}); ok {
			return rangeCondition(key, rng)
		}
		if text, ok := v["text"]; ok {
			return filters.Where().
				WithPath([]string{key}).
				WithOperator(filters.Like).
				WithValueText("*" + fmt.Sprint(text) + "*")
		}
		if geo, ok := v["geo"].(map[string]interface{}); ok {
			return geoCondition(key, geo)
		}
		// Unrecognized operator object: skipped, not rejected.
		return nil
	case []interface{}:
		return anyOfCondition(key, v)
	default:
		return scalarCondition(key, filters.Equal, value)
	}
}

// notCondition excludes every listed element. Singleton values are coerced to
// a one-element set; booleans are stringified lowercase to match stored
// payload conventions.
func notCondition(key string, excluded interface{}) *filters.WhereBuilder {
	elems, ok := excluded.([]interface{})
	if !ok {
		elems = []interface{}{excluded}
	}
	conds := make([]*filters.WhereBuilder, 0, len(elems))
	for _, e := range elems {
		if b, isBool := e.(bool); isBool {
			e = strconv.FormatBool(b)
		}
		conds = append(conds, scalarCondition(key, filters.NotEqual, e))
	}
	return combineAnd(conds)
}

func rangeCondition(key string, rng map[string]interface{}) *filters.WhereBuilder {
	bounds := []struct {
		sub string
		op  filters.WhereOperator
	}{
		{"gt", filters.GreaterThan},
		{"gte", filters.GreaterThanEqual},
		{"lt", filters.LessThan},
		{"lte", filters.LessThanEqual},
	}
	conds := make([]*filters.WhereBuilder, 0, len(bounds))
	for _, b := range bounds {
		if bound, ok := rng[b.sub]; ok {
			conds = append(conds, scalarCondition(key, b.op, bound))
		}
	}
	return combineAnd(conds)
}

func geoCondition(key string, geo map[string]interface{}) *filters.WhereBuilder {
	lon, _ := toFloat(geo["lon"])
	lat, _ := toFloat(geo["lat"])
	radius, _ := toFloat(geo["radius"])
	return filters.Where().
		WithPath([]string{key}).
		WithOperator(filters.WithinGeoRange).
		WithValueGeoRange(&filters.GeoCoordinatesParameter{
			Latitude:    float32(lat),
			Longitude:   float32(lon),
			MaxDistance: float32(radius),
		})
}

func anyOfCondition(key string, elems []interface{}) *filters.WhereBuilder {
	if len(elems) == 0 {
		return nil
	}
	b := filters.Where().WithPath([]string{key}).WithOperator(filters.ContainsAny)
	switch elems[0].(type) {
	case bool:
		vals := make([]bool, 0, len(elems))
		for _, e := range elems {
			if v, ok := e.(bool); ok {
				vals = append(vals, v)
			}
		}
		return b.WithValueBoolean(vals...)
	case float64, int, int64:
		vals := make([]float64, 0, len(elems))
		for _, e := range elems {
			if f, ok := toFloat(e); ok {
				vals = append(vals, f)
			}
		}
		return b.WithValueNumber(vals...)
	default:
		vals := make([]string, 0, len(elems))
		for _, e := range elems {
			vals = append(vals, fmt.Sprint(e))
		}
		return b.WithValueText(vals...)
	}
}

func scalarCondition(key string, op filters.WhereOperator, value interface{}) *filters.WhereBuilder {
	b := filters.Where().WithPath([]string{key}).WithOperator(op)
	switch v := value.(type) {
	case bool:
		return b.WithValueBoolean(v)
	case float64, int, int64:
		f, _ := toFloat(v)
		return b.WithValueNumber(f)
	case string:
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return b.WithValueDate(ts)
		}
		return b.WithValueText(v)
	default:
		return b.WithValueText(fmt.Sprint(v))
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

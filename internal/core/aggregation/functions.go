package aggregation

// Aggregate function names accepted in column descriptors.
const (
	FuncCount = "COUNT"
	FuncSum   = "SUM"
	FuncAvg   = "AVG"
	FuncMin   = "MIN"
	FuncMax   = "MAX"
)

// Functions is the closed set of SQL aggregate functions a descriptor may name.
var Functions = map[string]struct{}{
	FuncCount: {},
	FuncSum:   {},
	FuncAvg:   {},
	FuncMin:   {},
	FuncMax:   {},
}

// ValidFunction reports whether name is a registered aggregate function.
func ValidFunction(name string) bool {
	_, ok := Functions[name]
	return ok
}

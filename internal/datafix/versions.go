package datafix

import "github.com/zeusync/dataconverter/internal/core/converter"

// Data versions of the game releases rules are keyed against.
var (
	V15W32A  = converter.V(100)
	V1_12_2  = converter.V(1343)
	V1_13    = converter.V(1519)
	V1_16_5  = converter.V(2586)
	V21W43A  = converter.V(2844)
	V1_20    = converter.V(3463)
	V1_20_4  = converter.V(3700)
	V24W07A  = converter.V(3817)
	V1_20_5  = converter.V(3837)
	V1_21    = converter.V(3953)
	V1_21_1  = converter.V(3955)
	Current  = V1_21_1
	versions = map[string]converter.Version{
		"15w32a": V15W32A,
		"1.12.2": V1_12_2,
		"1.13":   V1_13,
		"1.16.5": V1_16_5,
		"21w43a": V21W43A,
		"1.20":   V1_20,
		"1.20.4": V1_20_4,
		"24w07a": V24W07A,
		"1.20.5": V1_20_5,
		"1.21":   V1_21,
		"1.21.1": V1_21_1,
	}
)

// LookupVersion resolves a release name such as "1.20.4" or a numeric data
// version such as "3818.5".
func LookupVersion(name string) (converter.Version, error) {
	if v, ok := versions[name]; ok {
		return v, nil
	}
	if name == "current" {
		return Current, nil
	}
	return converter.ParseVersion(name)
}

package datafix

import (
	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/types"
)

var signLineKeys = []string{"Text1", "Text2", "Text3", "Text4"}

// registerV101 makes legacy sign lines strict JSON components.
func registerV101(s *schema) {
	v := converter.V(V15W32A.Major + 1)
	s.tileEntity.AddConverterForID("Sign", v, func(data types.MapType, _, _ converter.Version) (types.MapType, error) {
		for _, key := range signLineKeys {
			if data.HasKeyOfType(key, types.String) {
				data.SetString(key, ConvertFromLenient(data.GetString(key, "")))
			}
		}
		return nil, nil
	})
}

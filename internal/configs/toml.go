package configs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadTOML loads a TOML file into a struct, rejecting keys the struct
// does not declare.
func LoadTOML(filePath string, data interface{}) error {
	md, err := toml.DecodeFile(filePath, data)
	if err != nil {
		return err
	}

	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}

	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return fmt.Errorf("unknown keys in %s: %s", filePath, strings.Join(keys, ", "))
}

// Package banner prints the startup banner when imported.
package banner

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed banner.txt
var art string

func init() {
	fmt.Println(strings.TrimRight(art, "\n"))
}

package condition

import "fmt"

func toText(v any) string {
	return fmt.Sprint(v)
}

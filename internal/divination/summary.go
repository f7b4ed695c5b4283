package divination

import (
	"fmt"
	"strings"

	"github.com/zapponejosh/liuren-api/internal/liuren"
	"github.com/zapponejosh/liuren-api/internal/wuxing"
)

var positionLabels = [3]string{"初传（前期）", "中传（中期）", "末传（后期）"}

// Summarize renders a plain-text reading of a transmission: each position
// with its symbol details, followed by the two element relations.
func Summarize(tr liuren.Transmission) string {
	var b strings.Builder

	for i, s := range tr.Symbols() {
		fmt.Fprintf(&b, "%s：【%s】（%s）", positionLabels[i], s.Name, s.ElementName())
		if s.Interpretation != "" {
			fmt.Fprintf(&b, " %s", s.Interpretation)
		}
		if s.Direction != "" || s.Deity != "" {
			fmt.Fprintf(&b, " 方位：%s 神灵：%s", s.Direction, s.Deity)
		}
		b.WriteString("\n")
	}

	names := [3]string{"初传", "中传", "末传"}
	for i, r := range tr.Relations() {
		if r == wuxing.Neutral {
			fmt.Fprintf(&b, "%s和%s五行没有生或克的关系", names[i], names[i+1])
		} else {
			fmt.Fprintf(&b, "%s【%s】%s", names[i], r.Label(), names[i+1])
		}
		if i == 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

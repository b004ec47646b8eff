package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/idlecolony-go/internal/application/game"
	"github.com/andrescamacho/idlecolony-go/internal/domain/activity"
)

// TreeNode is one line of a rendered colony tree
type TreeNode struct {
	Label    string
	Detail   string
	Healthy  bool
	Children []*TreeNode
}

// TreeFormatter renders the colony as a tree of targets and their workers
type TreeFormatter struct {
	useColors bool
	useEmojis bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors, useEmojis bool) *TreeFormatter {
	return &TreeFormatter{
		useColors: useColors,
		useEmojis: useEmojis,
	}
}

// BuildColonyTree groups the status into nodes, activities and buildings,
// with the workers assigned to each target underneath it
func BuildColonyTree(status game.Status) *TreeNode {
	byTarget := make(map[string]map[string]int)
	for _, w := range status.Workers {
		if w.TargetID == "" {
			continue
		}
		if byTarget[w.TargetID] == nil {
			byTarget[w.TargetID] = make(map[string]int)
		}
		byTarget[w.TargetID][string(w.State)]++
	}

	workerLeaves := func(target string) []*TreeNode {
		states := byTarget[target]
		keys := make([]string, 0, len(states))
		for k := range states {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		leaves := make([]*TreeNode, 0, len(keys))
		for _, k := range keys {
			leaves = append(leaves, &TreeNode{Label: fmt.Sprintf("%d %s", states[k], k), Healthy: true})
		}
		return leaves
	}

	root := &TreeNode{Label: "Colony", Detail: fmt.Sprintf("elapsed %s", status.Elapsed.Round(1e9)), Healthy: true}

	nodes := &TreeNode{Label: "Nodes", Healthy: true}
	for _, n := range status.Nodes {
		nodes.Children = append(nodes.Children, &TreeNode{
			Label:    n.ID,
			Detail:   fmt.Sprintf("%s/%s, %d assigned", formatAmount(n.Available), formatAmount(n.Capacity), n.Assigned),
			Healthy:  n.Available >= 1,
			Children: workerLeaves(n.ID),
		})
	}

	activities := &TreeNode{Label: "Activities", Healthy: true}
	for _, a := range status.Activities {
		detail := fmt.Sprintf("%s, %d assigned", a.Status, a.Assigned)
		if a.Reason != "" {
			detail += ": " + a.Reason
		}
		activities.Children = append(activities.Children, &TreeNode{
			Label:    a.ID,
			Detail:   detail,
			Healthy:  a.Status == activity.StatusRunning,
			Children: workerLeaves(a.ID),
		})
	}

	buildings := &TreeNode{Label: "Buildings", Detail: fmt.Sprintf("%d/%d slots", status.UsedSlots, status.AvailableSlots), Healthy: true}
	for _, b := range status.Buildings {
		detail := "complete"
		if !b.Complete {
			detail = fmt.Sprintf("%.0f%% built", b.Progress*100)
		} else if b.TrainingQueue > 0 {
			detail = fmt.Sprintf("%d queued", b.TrainingQueue)
		} else if b.Occupancy > 0 {
			detail = fmt.Sprintf("%d occupants", b.Occupancy)
		}
		buildings.Children = append(buildings.Children, &TreeNode{
			Label:   fmt.Sprintf("%s (%s)", b.ID, b.TypeID),
			Detail:  detail,
			Healthy: b.Complete,
		})
	}

	root.Children = []*TreeNode{nodes, activities, buildings}
	return root
}

// FormatTree renders a tree with visual indicators
func (f *TreeFormatter) FormatTree(root *TreeNode) string {
	if root == nil {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

func (f *TreeFormatter) formatNode(builder *strings.Builder, node *TreeNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	detail := ""
	if node.Detail != "" {
		detail = fmt.Sprintf(" [%s%s%s]", f.detailColor(node), node.Detail, f.colorReset())
	}
	builder.WriteString(fmt.Sprintf("%s%s %s%s\n", linePrefix, f.getStatusIcon(node), node.Label, detail))

	if len(node.Children) > 0 {
		var childPrefix string
		if isRoot {
			childPrefix = ""
		} else if isLast {
			childPrefix = prefix + "    "
		} else {
			childPrefix = prefix + "│   "
		}

		for i, child := range node.Children {
			f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
		}
	}
}

func (f *TreeFormatter) getStatusIcon(node *TreeNode) string {
	if !f.useEmojis {
		if node.Healthy {
			return "[✓]"
		}
		return "[ ]"
	}

	if node.Healthy {
		return "✅"
	}
	return "⏳"
}

func (f *TreeFormatter) detailColor(node *TreeNode) string {
	if !f.useColors {
		return ""
	}
	if node.Healthy {
		return "\033[32m" // Green
	}
	return "\033[33m" // Yellow
}

func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary creates a compact summary of the tree
func (f *TreeFormatter) FormatTreeSummary(root *TreeNode) string {
	if root == nil {
		return "No colony tree"
	}

	total, healthy := 0, 0
	var walk func(n *TreeNode)
	walk = func(n *TreeNode) {
		total++
		if n.Healthy {
			healthy++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)

	return fmt.Sprintf("Tree: %d entries, %d need attention", total, total-healthy)
}

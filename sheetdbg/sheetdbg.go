/*
Package sheetdbg implements helpers to debug a stylesheet registry.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sheetdbg

import (
	"fmt"

	"github.com/npillmayer/stylist"
	"github.com/npillmayer/stylist/cache"
	tp "github.com/xlab/treeprint"
)

// Print renders the node hierarchy of a sheet as an indented tree, one line
// per node with identifier, reference count and a content summary. Intended
// for t.Logf output and interactive debugging.
func Print(sheet *stylist.Sheet) string {
	header := fmt.Sprintf("Sheet(%s, change=%d)\n", sheet.ID(), sheet.ChangeID())
	p := tp.New()
	dump(p, sheet.Registry())
	return header + p.String()
}

func dump(p tp.Tree, c *cache.Cache) {
	for _, item := range c.Values() {
		label := fmt.Sprintf("%s ×%d %s", item.ID(), c.Count(item.ID()), summary(item))
		sub, ok := item.(cache.Container)
		if !ok || sub.Registry().Len() == 0 {
			p.AddNode(label)
			continue
		}
		branch := p.AddBranch(label)
		dump(branch, sub.Registry())
	}
}

func summary(item cache.Item) string {
	switch node := item.(type) {
	case *stylist.Rule:
		return fmt.Sprintf("rule %q", node.Header())
	case *stylist.Style:
		return fmt.Sprintf("style %q", node.Props())
	case *stylist.Selector:
		return fmt.Sprintf("selector %q", node.CSS())
	}
	return fmt.Sprintf("%q", item.CSS())
}

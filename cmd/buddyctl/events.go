package main

import (
	"fmt"
	"io"

	"github.com/vkngwrapper/buddy/memutils/metadata"
)

// narrator prints every structural change to the tree as it happens
type narrator struct {
	out    io.Writer
	styles styles
}

var _ metadata.EventHandler = &narrator{}

func (n *narrator) printf(format string, args ...any) {
	fmt.Fprintln(n.out, n.styles.event.Render(fmt.Sprintf(format, args...)))
}

func (n *narrator) BlockSplit(offset, size int) {
	n.printf("  split %s into %s and %s", formatRange(offset, size), formatRange(offset, size/2), formatRange(offset+size/2, size/2))
}

func (n *narrator) BlocksMerged(offset, size int) {
	n.printf("  merged %s and %s into %s", formatRange(offset, size/2), formatRange(offset+size/2, size/2), formatRange(offset, size))
}

func (n *narrator) BlockAllocated(offset, size, requestedSize int) {
	n.printf("  allocated %s for a request of %dB", formatRange(offset, size), requestedSize)
}

func (n *narrator) BlockFreed(offset, size int) {
	n.printf("  freed %s", formatRange(offset, size))
}

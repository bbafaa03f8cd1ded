package main

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/vkngwrapper/buddy/memutils"
	"github.com/vkngwrapper/buddy/memutils/metadata"
)

// treePrefix builds the connector column for a region. In a buddy tree a block is the left child
// of its parent when its offset is an even multiple of its size, so each ancestor's position can be
// derived from the offset alone.
func treePrefix(region metadata.Region, rootSize int) string {
	if region.Depth == 0 {
		return ""
	}

	var b strings.Builder
	for depth := 1; depth < region.Depth; depth++ {
		size := rootSize >> depth
		if (region.Offset/size)%2 == 0 {
			b.WriteString("│   ")
		} else {
			b.WriteString("    ")
		}
	}

	if (region.Offset/region.Size)%2 == 0 {
		b.WriteString("├── ")
	} else {
		b.WriteString("└── ")
	}

	return b.String()
}

func formatRange(offset, size int) string {
	return fmt.Sprintf("[%d, %d)", offset, offset+size)
}

func formatRegion(s styles, region metadata.Region) string {
	var b strings.Builder
	b.WriteString(s.address.Render(formatRange(region.Offset, region.Size)))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%dB", region.Size))
	b.WriteString(" ")
	b.WriteString(s.status(region.Status).Render(region.Status.String()))

	if region.Status == metadata.BlockAllocated {
		b.WriteString(fmt.Sprintf(" requested %dB", region.RequestedSize))
		if waste := region.Waste(); waste > 0 {
			b.WriteString(fmt.Sprintf(", waste %dB", waste))
		}
		if region.UserData != nil {
			b.WriteString(" ")
			b.WriteString(s.label.Render(fmt.Sprint(region.UserData)))
		}
	}

	return b.String()
}

func renderTree(w io.Writer, s styles, rootSize int, regions iter.Seq[metadata.Region]) {
	for region := range regions {
		fmt.Fprintf(w, "%s%s\n", s.connector.Render(treePrefix(region, rootSize)), formatRegion(s, region))
	}
}

func renderAllocations(w io.Writer, s styles, allocations []metadata.Region) {
	if len(allocations) == 0 {
		fmt.Fprintln(w, "No allocations.")
		return
	}

	fmt.Fprintln(w, s.header.Render("Allocations (address -> size):"))
	for _, allocation := range allocations {
		line := fmt.Sprintf("  %6d -> %dB", allocation.Offset, allocation.Size)
		if allocation.UserData != nil {
			line += " " + s.label.Render(fmt.Sprint(allocation.UserData))
		}
		fmt.Fprintln(w, line)
	}
}

func renderStatistics(w io.Writer, s styles, stats memutils.DetailedStatistics, largestFree int) {
	fmt.Fprintln(w, s.header.Render("Statistics:"))
	fmt.Fprintf(w, "  total bytes:            %d\n", stats.BlockBytes)
	fmt.Fprintf(w, "  allocated bytes:        %d (%d requested)\n", stats.AllocationBytes, stats.RequestedBytes)
	fmt.Fprintf(w, "  free bytes:             %d\n", stats.UnusedBytes())
	fmt.Fprintf(w, "  internal fragmentation: %dB\n", stats.InternalFragmentation())
	fmt.Fprintf(w, "  allocations:            %d\n", stats.AllocationCount)
	fmt.Fprintf(w, "  free blocks:            %d\n", stats.UnusedRangeCount)
	fmt.Fprintf(w, "  split blocks:           %d\n", stats.SplitBlockCount)
	fmt.Fprintf(w, "  largest free block:     %dB\n", largestFree)
}

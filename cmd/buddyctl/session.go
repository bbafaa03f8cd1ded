package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/buddy/allocator"
	"github.com/vkngwrapper/buddy/memutils/metadata"
	"golang.org/x/exp/slog"
)

// sessionConfig carries the global flags that shape a session
type sessionConfig struct {
	size     int
	strategy metadata.AllocationStrategy
	jsonOut  bool
	verbose  bool
	noColor  bool
	logger   *slog.Logger
}

// session owns one allocator and executes text operations against it
type session struct {
	out    io.Writer
	config sessionConfig
	styles styles
	alloc  *allocator.Allocator
}

var errQuit = errors.New("quit")

// errUsage marks a malformed operation, as opposed to a request the allocator refused
var errUsage = errors.New("usage")

func newSession(out io.Writer, config sessionConfig) (*session, error) {
	s := &session{
		out:    out,
		config: config,
		styles: newStyles(config.noColor),
	}

	err := s.resize(config.size)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *session) resize(size int) error {
	options := allocator.CreateOptions{
		Strategy: s.config.strategy,
	}
	if s.config.verbose && !s.config.jsonOut {
		options.Events = &narrator{out: s.out, styles: s.styles}
	}

	alloc, err := allocator.New(s.config.logger, size, options)
	if err != nil {
		return err
	}

	if s.alloc != nil {
		s.alloc.Reset()
	}

	s.alloc = alloc
	s.config.size = size
	return nil
}

// parseSize accepts a plain byte count or a count with a k, m or g suffix (powers of 1024)
func parseSize(str string) (int, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	multiplier := 1
	switch {
	case strings.HasSuffix(str, "k"):
		multiplier = 1 << 10
	case strings.HasSuffix(str, "m"):
		multiplier = 1 << 20
	case strings.HasSuffix(str, "g"):
		multiplier = 1 << 30
	}
	if multiplier != 1 {
		str = str[:len(str)-1]
	}

	value, err := strconv.Atoi(str)
	if err != nil {
		return 0, errors.Wrapf(errUsage, "%q is not a number", str)
	}

	return value * multiplier, nil
}

// isAllocatorError returns true for failures the allocator reports as normal outcomes
func isAllocatorError(err error) bool {
	return errors.Is(err, allocator.InvalidSizeError) ||
		errors.Is(err, allocator.InvalidRequestError) ||
		errors.Is(err, allocator.OutOfRangeError) ||
		errors.Is(err, allocator.NoSpaceAvailableError) ||
		errors.Is(err, allocator.NotAllocatedError)
}

// exec runs a single operation such as "alloc 50 P1" or "free 64". It returns errQuit when the
// operation asks the session to end.
func (s *session) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	op, args := strings.ToLower(fields[0]), fields[1:]
	switch op {
	case "alloc", "allocate", "a":
		if len(args) < 1 || len(args) > 2 {
			return errors.Wrap(errUsage, "alloc <size> [label]")
		}
		size, err := parseSize(args[0])
		if err != nil {
			return err
		}
		var label any
		if len(args) == 2 {
			label = args[1]
		}
		return s.allocate(size, label)
	case "free", "f":
		if len(args) != 1 {
			return errors.Wrap(errUsage, "free <address|label>")
		}
		return s.free(args[0])
	case "tree", "t":
		return s.tree()
	case "list", "ls", "l":
		return s.list()
	case "stats":
		return s.stats()
	case "map":
		return s.detailedMap()
	case "validate":
		return s.validate()
	case "reset":
		dropped := s.alloc.Reset()
		s.report(fmt.Sprintf("Reset: dropped %d allocations", dropped), "Dropped", dropped)
		return nil
	case "resize":
		if len(args) != 1 {
			return errors.Wrap(errUsage, "resize <size>")
		}
		size, err := parseSize(args[0])
		if err != nil {
			return err
		}
		err = s.resize(size)
		if err != nil {
			return err
		}
		s.report(fmt.Sprintf("Restarted with %dB", size), "Size", size)
		return nil
	case "help", "?":
		s.help()
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		return errors.Wrapf(errUsage, "unknown operation %q, try help", op)
	}
}

// report prints a one-line confirmation, or a single-member JSON object in JSON mode
func (s *session) report(text string, name string, value int) {
	if s.config.jsonOut {
		writer := jwriter.NewWriter()
		obj := writer.Object()
		obj.Name(name).Int(value)
		obj.End()
		s.writeJSON(&writer)
		return
	}

	fmt.Fprintln(s.out, s.styles.success.Render(text))
}

func (s *session) writeJSON(writer *jwriter.Writer) {
	if err := writer.Error(); err != nil {
		fmt.Fprintln(s.out, s.styles.err.Render("json: "+err.Error()))
		return
	}

	fmt.Fprintln(s.out, string(writer.Bytes()))
}

func (s *session) allocate(size int, label any) error {
	offset, err := s.alloc.AllocateWithUserData(size, label)
	if err != nil {
		return err
	}

	blockSize, err := s.alloc.AllocationSize(offset)
	if err != nil {
		return err
	}

	if s.config.jsonOut {
		writer := jwriter.NewWriter()
		obj := writer.Object()
		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(blockSize)
		obj.Name("RequestedSize").Int(size)
		if label != nil {
			obj.Name("Label").String(fmt.Sprint(label))
		}
		obj.End()
		s.writeJSON(&writer)
		return nil
	}

	fmt.Fprintln(s.out, s.styles.success.Render(
		fmt.Sprintf("Allocated %dB block at address %d (requested %dB)", blockSize, offset, size)))
	return nil
}

// resolveAddress accepts a numeric address or the label of a live allocation
func (s *session) resolveAddress(str string) (int, error) {
	address, err := strconv.Atoi(str)
	if err == nil {
		return address, nil
	}

	for _, allocation := range s.alloc.ListAllocations() {
		if allocation.UserData == str {
			return allocation.Offset, nil
		}
	}

	return 0, errors.Wrapf(allocator.NotAllocatedError, "no allocation is labelled %q", str)
}

func (s *session) free(str string) error {
	address, err := s.resolveAddress(str)
	if err != nil {
		return err
	}

	size, err := s.alloc.AllocationSize(address)
	if err != nil {
		return err
	}

	err = s.alloc.Free(address)
	if err != nil {
		return err
	}

	s.report(fmt.Sprintf("Freed %dB block at address %d", size, address), "Freed", address)
	return nil
}

func (s *session) tree() error {
	if s.config.jsonOut {
		writer := jwriter.NewWriter()
		s.alloc.PrintTree(&writer)
		s.writeJSON(&writer)
		return nil
	}

	renderTree(s.out, s.styles, s.alloc.Size(), s.alloc.Tree())
	return nil
}

func (s *session) list() error {
	allocations := s.alloc.ListAllocations()

	if s.config.jsonOut {
		writer := jwriter.NewWriter()
		arr := writer.Array()
		for _, allocation := range allocations {
			obj := arr.Object()
			obj.Name("Offset").Int(allocation.Offset)
			obj.Name("Size").Int(allocation.Size)
			obj.Name("RequestedSize").Int(allocation.RequestedSize)
			if allocation.UserData != nil {
				obj.Name("Label").String(fmt.Sprint(allocation.UserData))
			}
			obj.End()
		}
		arr.End()
		s.writeJSON(&writer)
		return nil
	}

	renderAllocations(s.out, s.styles, allocations)
	return nil
}

func (s *session) stats() error {
	if s.config.jsonOut {
		writer := jwriter.NewWriter()
		s.alloc.PrintStatistics(&writer)
		s.writeJSON(&writer)
		return nil
	}

	renderStatistics(s.out, s.styles, s.alloc.Statistics(), s.alloc.LargestFreeRegion())
	return nil
}

func (s *session) detailedMap() error {
	writer := jwriter.NewWriter()
	s.alloc.PrintDetailedMap(&writer)
	s.writeJSON(&writer)
	return nil
}

func (s *session) validate() error {
	err := s.alloc.Validate()
	if err != nil {
		return errors.Wrap(err, "validation failed")
	}

	if s.config.jsonOut {
		writer := jwriter.NewWriter()
		obj := writer.Object()
		obj.Name("Valid").Bool(true)
		obj.End()
		s.writeJSON(&writer)
		return nil
	}

	fmt.Fprintln(s.out, s.styles.success.Render("Tree is consistent"))
	return nil
}

func (s *session) help() {
	fmt.Fprint(s.out, `Operations:
  alloc <size> [label]   allocate a block (size accepts k, m and g suffixes)
  free <address|label>   free the allocation at an address
  tree                   show the buddy tree
  list                   list live allocations by address
  stats                  show usage and fragmentation
  map                    print the detailed region map as JSON
  validate               check the tree's internal consistency
  reset                  free every allocation
  resize <size>          restart with a new total size
  help                   show this text
  quit                   leave the shell
`)
}

// printOpError prints an operation failure without ending the session
func (s *session) printOpError(err error) {
	fmt.Fprintln(s.out, s.styles.err.Render("Error: "+err.Error()))
}

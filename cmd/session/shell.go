package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/hitzhangjie/pubnames/pkg/symbol"
)

const (
	cmdGroupAnnotation = "cmd_group_annotation"

	cmdGroupImages = "1-images"
	cmdGroupNames  = "2-names"
	cmdGroupCode   = "3-code"
	cmdGroupOthers = "4-other"
	cmdGroupCobra  = "other"

	cmdGroupDelimiter = "-"

	prefix    = "pubnames> "
	descShort = "pubnames interactive commands"
)

var sessionRootCmd = &cobra.Command{
	Use:   "help [command]",
	Short: descShort,
}

var (
	CurrentSession *Session

	errNoImage = errors.New("no image opened, use `open <prog>` first")
)

// Config session settings
type Config struct {
	Order  binary.ByteOrder // nil means follow each ELF header
	Logger log.Logger
	Syntax string // disassembly syntax: go, gnu, intel
	Max    uint64 // instructions disassembled by default
}

// Session 交互式会话，管理打开的可执行程序
type Session struct {
	done   chan bool
	prefix string
	root   *cobra.Command
	liner  *liner.State
	last   string

	cfg Config

	// mu guards images and current, Cleanup may run from a signal handler
	mu      sync.Mutex
	images  map[uint64]*symbol.Image
	current *symbol.Image

	defers []func()
}

// NewSession 创建一个交互管理器
func NewSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = log.NewNopLogger()
	}

	fn := func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		// 描述信息
		fmt.Fprintln(out, cmd.Short)
		fmt.Fprintln(out)

		// 使用信息
		fmt.Fprintln(out, cmd.Use)
		fmt.Fprintln(out, cmd.Flags().FlagUsages())

		// 命令分组
		usage := helpMessageByGroups(cmd)
		fmt.Fprintln(out, usage)
	}
	sessionRootCmd.SetHelpFunc(fn)

	return &Session{
		done:   make(chan bool),
		prefix: prefix,
		root:   sessionRootCmd,
		cfg:    cfg,
		images: map[uint64]*symbol.Image{},
	}
}

// Start runs the read-eval loop until `exit` or end of input.
func (s *Session) Start() {
	s.liner = liner.NewLiner()
	s.liner.SetCtrlCAborts(true)
	s.liner.SetCompleter(completer)
	s.liner.SetTabCompletionStyle(liner.TabPrints)

	defer func() {
		s.liner.Close()
		for idx := len(s.defers) - 1; idx >= 0; idx-- {
			s.defers[idx]()
		}
	}()

	for {
		select {
		case <-s.done:
			return
		default:
		}

		txt, err := s.liner.Prompt(s.prefix)
		if err == io.EOF || err == liner.ErrPromptAborted {
			return
		}
		if err != nil {
			level.Error(s.cfg.Logger).Log("msg", "read command", "err", err)
			return
		}

		txt = strings.TrimSpace(txt)
		if len(txt) != 0 {
			s.last = txt
			s.liner.AppendHistory(txt)
		} else {
			txt = s.last
		}
		if len(txt) == 0 {
			continue
		}

		s.Exec(strings.Fields(txt)...)
	}
}

// Exec runs one command line, errors are printed by cobra.
func (s *Session) Exec(args ...string) error {
	s.root.SetArgs(args)
	return s.root.Execute()
}

func (s *Session) AtExit(fn func()) *Session {
	s.defers = append(s.defers, fn)
	return s
}

func (s *Session) Stop() {
	close(s.done)
}

// Open analyzes `path` and makes it the current image.
func (s *Session) Open(path string) (*symbol.Image, error) {
	im, err := symbol.OpenImage(path, s.cfg.Order, s.cfg.Logger)
	if err != nil {
		return nil, err
	}
	s.Add(im)
	return im, nil
}

// Add registers an analyzed image and makes it the current one.
func (s *Session) Add(im *symbol.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images[im.ID] = im
	s.current = im
	level.Debug(s.cfg.Logger).Log("msg", "image opened", "id", im.ID, "path", im.Path)
}

// Use switches the current image.
func (s *Session) Use(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	im, ok := s.images[id]
	if !ok {
		return fmt.Errorf("image %d not exists", id)
	}
	s.current = im
	return nil
}

// Current returns the image commands work on.
func (s *Session) Current() (*symbol.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, errNoImage
	}
	return s.current, nil
}

// Images returns the opened images ordered by id.
func (s *Session) Images() symbol.Images {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedImages()
}

func (s *Session) sortedImages() symbol.Images {
	ims := make(symbol.Images, 0, len(s.images))
	for _, im := range s.images {
		ims = append(ims, im)
	}
	sort.Sort(ims)
	return ims
}

// Close closes image `id`, the current image falls back to the newest one.
func (s *Session) Close(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.close(id)
}

func (s *Session) close(id uint64) error {
	im, ok := s.images[id]
	if !ok {
		return fmt.Errorf("image %d not exists", id)
	}
	delete(s.images, id)

	if s.current == im {
		s.current = nil
		if ims := s.sortedImages(); len(ims) != 0 {
			s.current = ims[len(ims)-1]
		}
	}
	return im.Close()
}

// CloseAll closes every image, the first error is returned.
func (s *Session) CloseAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for _, im := range s.sortedImages() {
		if err := s.close(im.ID); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func completer(line string) []string {
	cmds := []string{}
	for _, c := range sessionRootCmd.Commands() {
		// complete cmd
		if strings.HasPrefix(c.Use, line) {
			cmds = append(cmds, strings.Split(c.Use, " ")[0])
		}
		// complete cmd's aliases
		for _, alias := range c.Aliases {
			if strings.HasPrefix(alias, line) {
				cmds = append(cmds, alias)
			}
		}
	}
	return cmds
}

// helpMessageByGroups 将各个命令按照分组归类，再展示帮助信息
func helpMessageByGroups(cmd *cobra.Command) string {

	// key:group, val:sorted commands in same group
	groups := map[string][]string{}
	for _, c := range cmd.Commands() {
		// 如果没有指定命令分组，放入other组
		groupName, ok := c.Annotations[cmdGroupAnnotation]
		if !ok {
			groupName = cmdGroupCobra
		}

		groupCmds := append(groups[groupName], fmt.Sprintf("  %-16s:%s", c.Name(), c.Short))
		sort.Strings(groupCmds)

		groups[groupName] = groupCmds
	}

	if len(groups[cmdGroupCobra]) != 0 {
		groups[cmdGroupOthers] = append(groups[cmdGroupOthers], groups[cmdGroupCobra]...)
	}
	delete(groups, cmdGroupCobra)

	// 按照分组名进行排序
	groupNames := []string{}
	for k := range groups {
		groupNames = append(groupNames, k)
	}
	sort.Strings(groupNames)

	// 按照group分组，并对组内命令进行排序
	buf := bytes.Buffer{}
	for _, groupName := range groupNames {
		commands := groups[groupName]

		group := strings.Split(groupName, cmdGroupDelimiter)[1]
		buf.WriteString(fmt.Sprintf("- [%s]\n", group))

		for _, cmd := range commands {
			buf.WriteString(fmt.Sprintf("%s\n", cmd))
		}
		buf.WriteString("\n")
	}
	return buf.String()
}

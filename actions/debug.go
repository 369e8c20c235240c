// Package actions holds the consumers of the messages selected by the pipeline.
package actions

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"subpub/config"
	"subpub/domain"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

type DebugOptions struct {
	Name string `yaml:"name"`
}

// Debug prints the messages it receives as a table.
type Debug struct {
	ID      string
	name    string
	out     io.Writer
	colours bool
}

func NewDebug(out io.Writer, colours bool, options map[string]any) (*Debug, error) {
	var opts DebugOptions
	if err := config.Decode(options, &opts); err != nil {
		return nil, err
	}
	name := opts.Name
	if name == "" {
		name = "noname"
	}
	return &Debug{ID: uuid.NewString(), name: name, out: out, colours: colours}, nil
}

func (d *Debug) Name() string {
	return d.name
}

func (d *Debug) Run(_ context.Context, messages []*domain.Message) error {
	header := fmt.Sprintf("DEBUG (%s) %s", d.ID, d.name)
	if d.colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	if _, err := fmt.Fprintln(d.out, header); err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	table := tablewriter.NewWriter(d.out)
	table.SetHeader([]string{"Timestamp", "Type", "Name", "Weight", "Tags", "Location", "Body"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, msg := range messages {
		table.Append([]string{
			msg.Timestamp().Format(time.DateTime),
			msg.Type(),
			msg.Name(),
			weight(msg),
			strings.Join(msg.Tags(), ","),
			msg.Location(),
			msg.Body(),
		})
	}
	table.Render()
	return nil
}

func weight(msg *domain.Message) string {
	if w, ok := msg.Weight(); ok {
		return strconv.Itoa(w)
	}
	value, _ := msg.Get(domain.FieldWeight)
	return fmt.Sprint(value)
}

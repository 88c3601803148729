package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	designio "github.com/matzehuels/copper/pkg/io"
	"github.com/matzehuels/copper/pkg/netlist"
	"github.com/matzehuels/copper/pkg/render/ratsnest"
)

// netsCommand creates the nets command.
func (c *CLI) netsCommand() *cobra.Command {
	var net, pin string

	cmd := &cobra.Command{
		Use:   "nets <design.toml>",
		Short: "List nets, their pins and routing status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := designio.Load(args[0])
			if err != nil {
				return err
			}
			switch {
			case pin != "":
				return printPinNet(d, pin)
			case net != "":
				return printNetPins(d, netlist.NetID(net))
			default:
				fmt.Println(renderNets(d))
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&net, "net", "", "list the pins of one net")
	cmd.Flags().StringVar(&pin, "pin", "", "print the net of one pin (REF.PIN)")
	cmd.ValidArgsFunction = completeDesignFiles
	_ = cmd.RegisterFlagCompletionFunc("net", completeNets)
	_ = cmd.RegisterFlagCompletionFunc("pin", completePins)

	return cmd
}

func printPinNet(d *designio.Design, s string) error {
	ref, err := netlist.ParsePinRef(s)
	if err != nil {
		return err
	}
	if !d.Netlist.HasPin(ref) {
		return fmt.Errorf("pin %s does not exist", ref)
	}
	net, ok := d.Netlist.NetFor(ref)
	if !ok {
		printInfo("%s is unconnected", ref)
		return nil
	}
	printKeyValue(ref.String(), string(net))
	return nil
}

func printNetPins(d *designio.Design, net netlist.NetID) error {
	if !d.Netlist.HasNet(net) {
		return fmt.Errorf("net %s does not exist", net)
	}
	fmt.Println(StyleTitle.Render(string(net)))
	for _, p := range d.Netlist.PinsOf(net) {
		fmt.Println("  " + StyleValue.Render(p.String()))
	}
	return nil
}

// renderNets renders every net with its class, pin count and routing status.
func renderNets(d *designio.Design) string {
	status := ratsnest.Compute(d.Board.Snapshot(), d.Netlist)

	var rows [][]string
	for _, n := range d.Netlist.Nets() {
		routed := "-"
		if s, ok := ratsnest.Find(status, n.Name); ok {
			if s.Complete() {
				routed = "complete"
			} else {
				routed = fmt.Sprintf("%d open · %s", len(s.Airwires), s.Unrouted())
			}
		}
		rows = append(rows, []string{
			string(n.Name),
			string(n.Type),
			string(d.Netlist.ClassOf(n.Name)),
			fmt.Sprint(len(d.Netlist.PinsOf(n.Name))),
			routed,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Net", "Type", "Class", "Pins", "Routing").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 4 && row < len(rows) && rows[row][4] == "complete" {
				return StyleSuccess
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

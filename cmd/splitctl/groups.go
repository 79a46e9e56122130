package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitchain/internal/ledger"
	"github.com/mmynk/splitchain/internal/models"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List and manage groups",
	RunE:  runListGroups,
}

var groupGetCmd = &cobra.Command{
	Use:   "get <group-id>",
	Short: "Show one group",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetGroup,
}

var (
	flagGroupMembers []string
)

var groupCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateGroup,
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Join a group",
	Args:  cobra.ExactArgs(1),
	RunE:  runJoinGroup,
}

var groupLeaveCmd = &cobra.Command{
	Use:   "leave <group-id>",
	Short: "Leave a group",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeaveGroup,
}

func init() {
	groupCreateCmd.Flags().StringSliceVar(&flagGroupMembers, "members", nil, "Initial member addresses (comma separated)")

	groupsCmd.AddCommand(groupGetCmd, groupCreateCmd, groupJoinCmd, groupLeaveCmd)
	rootCmd.AddCommand(groupsCmd)
}

func parseGroupID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid group id %q", arg)
	}
	return id, nil
}

func runListGroups(_ *cobra.Command, _ []string) error {
	from, err := requireFrom()
	if err != nil {
		return err
	}
	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	var all []models.Group
	page := ledger.Pagination{Limit: 30}
	for {
		groups, next, err := client.UserGroups(ctx, from, page)
		if err != nil {
			return err
		}
		all = append(all, groups...)
		if next == nil || len(groups) == 0 {
			break
		}
		page.StartAfter = *next
	}

	if len(all) == 0 {
		fmt.Println("No groups found.")
		return nil
	}

	rows := make([][]string, len(all))
	for i, g := range all {
		rows[i] = []string{
			strconv.FormatUint(g.ID, 10),
			g.Name,
			strconv.Itoa(len(g.Members)),
			models.TimeAgo(g.CreatedAt, time.Now()),
		}
	}
	fmt.Print(renderTable("Your groups", []string{"ID", "Name", "Members", "Created"}, rows))
	return nil
}

func runGetGroup(_ *cobra.Command, args []string) error {
	id, err := parseGroupID(args[0])
	if err != nil {
		return err
	}
	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	group, err := client.Group(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Group %d: %s\n", group.ID, group.Name)
	fmt.Printf("  Creator: %s\n", models.ShortAddress(group.Creator))
	fmt.Printf("  Members (%d):\n", len(group.Members))
	for _, m := range group.Members {
		fmt.Printf("    %s\n", m)
	}
	return nil
}

func runCreateGroup(_ *cobra.Command, args []string) error {
	from, err := requireFrom()
	if err != nil {
		return err
	}
	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	tx, err := client.CreateGroup(ctx, from, strings.TrimSpace(args[0]), flagGroupMembers)
	if err != nil {
		return err
	}
	fmt.Printf("Group created. id=%s tx=%s\n", tx.WasmAttribute("group_id"), tx.TransactionHash)
	return nil
}

func runJoinGroup(_ *cobra.Command, args []string) error {
	id, err := parseGroupID(args[0])
	if err != nil {
		return err
	}
	from, err := requireFrom()
	if err != nil {
		return err
	}
	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	tx, err := client.JoinGroup(ctx, from, id)
	if err != nil {
		return err
	}
	fmt.Printf("Joined group %d. tx=%s\n", id, tx.TransactionHash)
	return nil
}

func runLeaveGroup(_ *cobra.Command, args []string) error {
	id, err := parseGroupID(args[0])
	if err != nil {
		return err
	}
	from, err := requireFrom()
	if err != nil {
		return err
	}
	client, err := newLedger()
	if err != nil {
		return err
	}
	ctx, cancel := cmdContext()
	defer cancel()

	tx, err := client.LeaveGroup(ctx, from, id)
	if err != nil {
		return err
	}
	fmt.Printf("Left group %d. tx=%s\n", id, tx.TransactionHash)
	return nil
}

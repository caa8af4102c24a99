package main

import (
	"fmt"

	"github.com/amonks/kanban/participation"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req"},
	Short:   "Manage requests to join tasks",
	Long: `Manage requests to join tasks.

Requests are answered oldest first. Accepting a request assigns the
requester to the task.`,
}

// request add
var requestAddCmd = &cobra.Command{
	Use:   "add <task> <user>",
	Short: "Ask to join a task (user is ID or ID:Name)",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequestAdd,
}

// request accept
var requestAcceptCmd = &cobra.Command{
	Use:   "accept <task> <user-id>",
	Short: "Accept a request and assign the requester",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequestAccept,
}

// request reject
var requestRejectCmd = &cobra.Command{
	Use:   "reject <task> <user-id>",
	Short: "Reject a request",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequestReject,
}

// request list
var requestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending requests, oldest first",
	Args:  cobra.NoArgs,
	RunE:  runRequestList,
}

var requestListJSON bool

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.AddCommand(requestAddCmd, requestAcceptCmd, requestRejectCmd, requestListCmd)

	requestListCmd.Flags().BoolVar(&requestListJSON, "json", false, "Output as JSON")
}

func runRequestAdd(cmd *cobra.Command, args []string) error {
	requester, err := parseUser(args[1])
	if err != nil {
		return err
	}

	return updateBoard(func(s *boardSession) error {
		task, err := s.resolveTask(args[0])
		if err != nil {
			return err
		}
		request, err := s.requests.Enqueue(task.ID, requester)
		if err != nil {
			return err
		}
		_, highlight := s.highlighter()
		fmt.Printf("Requested %s for %s (%d pending)\n", highlight(request.TaskID), request.Requester.Name, s.requests.Len())
		return nil
	})
}

func runRequestAccept(cmd *cobra.Command, args []string) error {
	return answerRequest(args, "Accepted", (*participation.Manager).Accept)
}

func runRequestReject(cmd *cobra.Command, args []string) error {
	return answerRequest(args, "Rejected", (*participation.Manager).Reject)
}

func answerRequest(args []string, verb string, answer func(*participation.Manager, string, string) (participation.Request, bool, error)) error {
	return updateBoard(func(s *boardSession) error {
		task, err := s.resolveTask(args[0])
		if err != nil {
			return err
		}
		next, ok, err := answer(s.requests, task.ID, args[1])
		if err != nil {
			return err
		}
		_, highlight := s.highlighter()
		fmt.Printf("%s %s for %s\n", verb, args[1], highlight(task.ID))
		if ok {
			fmt.Printf("Next: %s for %s\n", next.Requester.Name, highlight(next.TaskID))
		}
		return nil
	})
}

func runRequestList(cmd *cobra.Command, args []string) error {
	s, err := readBoard()
	if err != nil {
		return err
	}

	pending := s.requests.Pending()
	if requestListJSON {
		if pending == nil {
			pending = []participation.Request{}
		}
		return encodeJSONToStdout(pending)
	}
	if len(pending) == 0 {
		fmt.Println("No pending requests.")
		return nil
	}
	fmt.Print(formatRequestTable(s, pending))
	return nil
}

// Command unixfsctl creates, mounts, and interactively drives a unixfs disk
// image, mirroring the reference tool's create/mount/REPL workflow.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	unixfs "github.com/alveshenriique/unixfs"
	"github.com/alveshenriique/unixfs/shell"
)

func main() {
	app := &cli.App{
		Name:  "unixfsctl",
		Usage: "create and drive a unixfs disk image",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "format a new disk image",
				ArgsUsage: "IMAGE_PATH TOTAL_KB BLOCK_KB",
				Action:    createImage,
			},
			{
				Name:      "run",
				Usage:     "mount an image and start the interactive shell",
				ArgsUsage: "IMAGE_PATH",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "verbose", Usage: "enable debug logging"},
				},
				Action: runShell,
			},
			{
				Name:      "df",
				Usage:     "print usage info for an image without starting the shell",
				ArgsUsage: "IMAGE_PATH",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "export", Usage: "print as CSV"},
				},
				Action: dfImage,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func createImage(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("usage: unixfsctl create IMAGE_PATH TOTAL_KB BLOCK_KB")
	}
	path := c.Args().Get(0)
	totalKB, err := strconv.ParseUint(c.Args().Get(1), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid TOTAL_KB: %w", err)
	}
	blockKB, err := strconv.ParseUint(c.Args().Get(2), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid BLOCK_KB: %w", err)
	}
	if err := unixfs.Format(path, uint32(totalKB), uint32(blockKB)); err != nil {
		return err
	}
	fmt.Printf("created %s (%d KB, %d KB blocks)\n", path, totalKB, blockKB)
	return nil
}

func runShell(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: unixfsctl run IMAGE_PATH")
	}
	session, err := unixfs.Mount(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer session.Unmount()

	if c.Bool("verbose") {
		session.SetVerbose(true)
	}

	return shell.New(session, os.Stdout).Run(os.Stdin)
}

func dfImage(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: unixfsctl df IMAGE_PATH")
	}
	session, err := unixfs.Mount(c.Args().Get(0))
	if err != nil {
		return err
	}
	defer session.Unmount()

	info, err := session.Df()
	if err != nil {
		return err
	}
	if c.Bool("export") {
		csv, err := unixfs.DfCSV(info)
		if err != nil {
			return err
		}
		fmt.Print(csv)
		return nil
	}
	fmt.Printf("inodes: %d/%d used, blocks: %d/%d used, %dKB/%dKB\n",
		info.UsedInodes, info.TotalInodes, info.UsedBlocks, info.TotalBlocks, info.UsedKB, info.TotalKB)
	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abiosoft/ishell"

	"github.com/cheloftus/nodemcu-uploader/nodemcu"
)

// runShell provides an ishell backed interactive session on top of one
// synced uploader. Every command maps onto a single uploader operation.
func runShell(ctx context.Context, u *nodemcu.Uploader, logger *slog.Logger, verify nodemcu.VerifyMode) {
	sh := ishell.New()
	sh.SetPrompt("nodemcu> ")
	sh.Println("Connected. Type 'help' for commands, 'exit' to leave.")

	needArgs := func(c *ishell.Context, n int) bool {
		if len(c.Args) < n {
			c.Err(fmt.Errorf("%s: expected %d argument(s)", c.Cmd.Name, n))
			return false
		}
		return true
	}

	sh.AddCmd(&ishell.Cmd{
		Name: "ls",
		Help: "list device files",
		Func: func(c *ishell.Context) {
			files, err := u.ListFiles(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			for name, size := range files {
				c.Printf("%s\t%d\n", name, size)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "upload",
		Help: "LOCAL [REMOTE]",
		Func: func(c *ishell.Context) {
			if !needArgs(c, 1) {
				return
			}
			remote := ""
			if len(c.Args) > 1 {
				remote = c.Args[1]
			}
			if err := u.WriteFile(ctx, c.Args[0], remote, verify); err != nil {
				c.Err(err)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "download",
		Help: "REMOTE [LOCAL]",
		Func: func(c *ishell.Context) {
			if !needArgs(c, 1) {
				return
			}
			local := ""
			if len(c.Args) > 1 {
				local = c.Args[1]
			}
			if err := u.ReadFile(ctx, c.Args[0], local); err != nil {
				c.Err(err)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "rm",
		Help: "REMOTE",
		Func: func(c *ishell.Context) {
			if !needArgs(c, 1) {
				return
			}
			if err := u.RemoveFile(ctx, c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "do",
		Help: "REMOTE",
		Func: func(c *ishell.Context) {
			if !needArgs(c, 1) {
				return
			}
			out, err := u.DoFile(ctx, c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "compile",
		Help: "REMOTE",
		Func: func(c *ishell.Context) {
			if !needArgs(c, 1) {
				return
			}
			if err := u.CompileFile(ctx, c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "prepare",
		Help: "upload the device-side receiver routines",
		Func: func(c *ishell.Context) {
			if err := u.Prepare(ctx); err != nil {
				c.Err(err)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "format",
		Help: "format the device filesystem",
		Func: func(c *ishell.Context) {
			if err := u.Format(ctx); err != nil {
				c.Err(err)
			}
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "heap",
		Help: "print free heap bytes",
		Func: func(c *ishell.Context) {
			heap, err := u.Heap(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(heap)
		},
	})

	sh.AddCmd(&ishell.Cmd{
		Name: "restart",
		Help: "restart the device",
		Func: func(c *ishell.Context) {
			if err := u.Restart(ctx); err != nil {
				c.Err(err)
			}
		},
	})

	logger.Debug("entering interactive shell")
	sh.Run()
}

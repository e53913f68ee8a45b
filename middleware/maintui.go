package middleware

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/mimusdev/mimus/db"
	"github.com/mimusdev/mimus/tui"
	"github.com/mimusdev/mimus/util"
	"github.com/muesli/termenv"
	"log"
)

func MainTui(conf *util.AppConfig) wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {

		pty, _, active := s.Pty()
		if !active {
			wish.Println(s, "no active terminal, skipping")
			return nil
		}

		hash := util.PkToHash(util.PublicKeyToString(s.PublicKey()))
		err, cred := db.GetDB().ReadCredentialBySshKeyHash(hash)
		if err != nil || cred == nil {
			log.Println("Could not retrieve the credential:", err)
			return nil
		}

		m := tui.NewModel(*cred, conf, pty.Window.Width, pty.Window.Height)
		return tea.NewProgram(m, tea.WithInput(s), tea.WithOutput(s), tea.WithAltScreen())
	}
	return bm.MiddlewareWithProgramHandler(teaHandler, termenv.ANSI256)
}

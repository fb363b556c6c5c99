package mailbox

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// IMAPDialer connects to an IMAP server over TLS and logs in with an app
// password. The INBOX is selected read-only: extraction never mutates the
// mailbox.
type IMAPDialer struct {
	Addr     string
	Username string
	Password string
}

// Dial opens and authenticates a connection. On any failure after the TCP
// connect the session is logged out before returning.
func (d *IMAPDialer) Dial(ctx context.Context) (Connection, error) {
	c, err := client.DialTLS(d.Addr, nil)
	if err != nil {
		return nil, fmt.Errorf("Dial: connecting to %s: %w", d.Addr, err)
	}

	if err := c.Login(d.Username, d.Password); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("Dial: login: %w", err)
	}

	if _, err := c.Select("INBOX", true); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("Dial: selecting INBOX: %w", err)
	}

	return &imapConnection{c: c}, nil
}

type imapConnection struct {
	c *client.Client
}

// Search issues a UID search combining a From-header filter with SINCE; the
// protocol formats the date in its day-monthname-year form.
func (ic *imapConnection) Search(ctx context.Context, fromAddr string, since time.Time) ([]uint32, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	criteria.Header.Add("From", fromAddr)

	uids, err := ic.c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("Search: from %s since %s: %w", fromAddr, since.Format("02-Jan-2006"), err)
	}
	return uids, nil
}

// Fetch retrieves the full RFC-822 body of one message by UID.
func (ic *imapConnection) Fetch(ctx context.Context, uid uint32) ([]byte, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- ic.c.UidFetch(seqset, items, messages)
	}()

	var raw []byte
	for msg := range messages {
		r := msg.GetBody(section)
		if r == nil {
			continue
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("Fetch: reading message %d: %w", uid, err)
		}
		raw = b
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("Fetch: message %d: %w", uid, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("Fetch: message %d returned no body", uid)
	}
	return raw, nil
}

func (ic *imapConnection) Logout() error {
	return ic.c.Logout()
}

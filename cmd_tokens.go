// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/jessevdk/go-flags"
	"github.com/xchdev/explorer/metadata"
)

type tokensCommand struct {
	app *app
}

func newTokensCommand(a *app) *tokensCommand {
	return &tokensCommand{app: a}
}

func (x *tokensCommand) Register(p *flags.Parser) error {
	_, err := p.AddCommand(
		"tokens",
		"List CAT assets",
		"Print the CAT assets listed by Dexie, or only those with the "+
			"given asset ids",
		x,
	)
	return err
}

func (x *tokensCommand) Execute(args []string) error {
	if err := x.app.start(); err != nil {
		return err
	}
	return x.run(x.app.ctx, args)
}

func (x *tokensCommand) run(ctx context.Context, args []string) error {
	dexie := x.app.cfg.dexie()

	if len(args) == 0 {
		tokens, err := dexie.Tokens(ctx)
		if err != nil {
			return err
		}

		list := make([]metadata.Token, 0, len(tokens))
		for _, t := range tokens {
			list = append(list, t)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].ID < list[j].ID
		})
		return x.app.writeJSON(list)
	}

	list := make([]metadata.Token, 0, len(args))
	var missing int
	for _, id := range args {
		token, err := dexie.Token(ctx, id)
		if err != nil {
			return err
		}
		if token.IsNone() {
			log.Warnf("Asset %s is not listed", id)
			missing++
			continue
		}
		list = append(list, token.UnwrapOr(metadata.Token{}))
	}

	if err := x.app.writeJSON(list); err != nil {
		return err
	}
	if missing > 0 {
		return fmt.Errorf("%d of %d %s not listed", missing, len(args),
			pickNoun(len(args), "asset", "assets"))
	}
	return nil
}

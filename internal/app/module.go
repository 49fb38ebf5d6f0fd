package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/shandysiswandi/chequeflow/internal/approval"
	"github.com/shandysiswandi/chequeflow/internal/approval/outbound/db"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.approval.enabled") {
		if a.config.GetBool("modules.approval.migrate_on_start") {
			if err := db.NewDB(a.dbConn, a.ins).Migrate(a.ctx); err != nil {
				slog.Error("failed to migrate module approval", "error", err)
				os.Exit(1)
			}
		}

		dep := approval.Dependency{
			DBConn:      a.dbConn,
			Goroutine:   a.goroutine,
			Router:      a.router,
			Idempotency: a.idemp,
			Messaging:   a.messaging,
			Storage:     a.storage,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			HMAC:        a.hmac,
			Clock:       a.clock,
			Validator:   a.validator,
		}
		if a.aws != nil {
			endpoint := strings.TrimSpace(a.config.GetString("aws.endpoint"))
			dep.DynamoDB = dynamodb.NewFromConfig(*a.aws, func(o *dynamodb.Options) {
				if endpoint != "" {
					o.BaseEndpoint = aws.String(endpoint)
				}
			})
			dep.SNS = sns.NewFromConfig(*a.aws, func(o *sns.Options) {
				if endpoint != "" {
					o.BaseEndpoint = aws.String(endpoint)
				}
			})
		}

		mod, err := approval.New(dep)
		if err != nil {
			slog.Error("failed to init module approval", "error", err)
			os.Exit(1)
		}
		a.approval = mod
	}
}

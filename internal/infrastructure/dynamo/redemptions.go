package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-account-api/internal/config"
	"github.com/go-account-api/internal/domain"
)

// RedemptionRepo performs the cross-table mutations that conclude a token
// redemption. Each method is a single TransactWriteItems, so the account
// mutation and the token-record delete land together or not at all. The
// token delete carries an existence condition: if two redemptions race on
// the same record, the second transaction is cancelled instead of both
// succeeding.
type RedemptionRepo struct {
	client *dynamodb.Client
	tables config.DynamoTables
}

func NewRedemptionRepo(client *dynamodb.Client, tables config.DynamoTables) *RedemptionRepo {
	return &RedemptionRepo{client: client, tables: tables}
}

// ConfirmAccount marks the account verified and consumes the verification
// token record. Returns domain.ErrNotFound when the record was already
// consumed by a concurrent redemption.
func (r *RedemptionRepo) ConfirmAccount(ctx context.Context, accountID, tokenID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"verified":   true,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 aws.String(r.tables.Accounts),
				Key:                       strKey("account_id", accountID),
				UpdateExpression:          aws.String(ue.Expr),
				ExpressionAttributeNames:  ue.Names,
				ExpressionAttributeValues: ue.Values,
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(r.tables.VerificationTokens),
				Key:                 compositeKey("account_id", accountID, "token_id", tokenID),
				ConditionExpression: aws.String("attribute_exists(token_id)"),
			}},
		},
	})
	return wrapCancelled(err, "verification token already consumed")
}

// ChangePassword stores the new password hash and consumes the reset token
// record in one transaction.
func (r *RedemptionRepo) ChangePassword(ctx context.Context, accountID, newHash string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"password_hash": newHash,
		"updated_at":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 aws.String(r.tables.Accounts),
				Key:                       strKey("account_id", accountID),
				UpdateExpression:          aws.String(ue.Expr),
				ExpressionAttributeNames:  ue.Names,
				ExpressionAttributeValues: ue.Values,
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(r.tables.ResetTokens),
				Key:                 strKey("account_id", accountID),
				ConditionExpression: aws.String("attribute_exists(account_id)"),
			}},
		},
	})
	return wrapCancelled(err, "reset token already consumed")
}

// PurgeExpiredSignup removes an expired verification token together with the
// abandoned unverified account and its email marker, freeing the address for
// a fresh signup.
func (r *RedemptionRepo) PurgeExpiredSignup(ctx context.Context, accountID, tokenID, email string) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName: aws.String(r.tables.VerificationTokens),
				Key:       compositeKey("account_id", accountID, "token_id", tokenID),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tables.Accounts),
				Key:       strKey("account_id", accountID),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.tables.Accounts),
				Key:       strKey("account_id", emailMarkerKey(email)),
			}},
		},
	})
	return err
}

func wrapCancelled(err error, msg string) error {
	if err == nil {
		return nil
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return err
}

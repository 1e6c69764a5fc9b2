package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/blocto/solana-go-sdk/types"

	"memo-engine-sol/internal/consts"
	"memo-engine-sol/internal/derive"
	"memo-engine-sol/internal/memo"
	"memo-engine-sol/internal/parser"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/internal/txbuild"
	"memo-engine-sol/pkg/logger"
	"memo-engine-sol/pkg/utils"
)

const (
	defaultChatMessageLimit = 50
	maxChatMessageLimit     = 1000
)

// ChatStatistics 是一次全量聊天群扫描的汇总结果
type ChatStatistics struct {
	TotalGroups       uint64
	ValidGroups       uint64
	TotalMemos        uint64
	TotalBurnedTokens uint64
	Groups            []*parser.ChatGroup
}

// ChatMessage 是从群历史交易里还原出来的一条消息
type ChatMessage struct {
	Signature  string
	Sender     string
	Message    string
	Receiver   *string
	ReplyToSig *string
	Timestamp  int64
	Slot       uint64
}

// ChatMessagesPage 是一页群消息，HasMore 提示还可以继续用 before 翻页
type ChatMessagesPage struct {
	GroupID  uint64
	Messages []ChatMessage
	HasMore  bool
}

// SendChatMessage 组装发群消息的交易。聊天 memo 不走燃烧封包，
// 铸币权限账户在该指令里是可写的（合约会代发奖励）。
func (e *Engine) SendChatMessage(ctx context.Context, sender string, groupID uint64, message string, receiver, replyToSig *string) (*txbuild.Prepared, error) {
	senderPk, err := derive.ParseAddress(sender)
	if err != nil {
		return nil, err
	}

	memoText, err := memo.NewChatMessageData(groupID, sender, message, receiver, replyToSig).Encode()
	if err != nil {
		return nil, err
	}

	groupPDA, err := derive.ChatGroupPDA(e.programs.Chat, groupID)
	if err != nil {
		return nil, err
	}
	mintAuth, err := derive.MintAuthorityPDA(e.programs.Mint)
	if err != nil {
		return nil, err
	}
	uta, err := e.userTokenAccount(senderPk)
	if err != nil {
		return nil, err
	}

	var ixs []types.Instruction
	// 代币账户不存在时先补一条幂等创建，发言奖励需要落账的地方
	info, err := e.client.GetAccountInfo(ctx, uta.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		logger.Infof("[Engine] sender token account %s missing, prepending create", uta.ToBase58())
		ixs = append(ixs, createTokenAccountIx(senderPk, senderPk, uta, e.programs.TokenMint, true))
	}

	data := ixData(derive.IxSendMemoToGroup, groupID)
	ixs = append(ixs, types.Instruction{
		ProgramID: e.programs.Chat,
		Accounts: []types.AccountMeta{
			asSigner(senderPk),
			asWritable(groupPDA.Address),
			asWritable(e.programs.TokenMint),
			asWritable(mintAuth.Address),
			asWritable(uta),
			asReadonly(consts.TokenProgram2022),
			asReadonly(e.programs.Mint),
			asReadonly(consts.SysvarInstructions),
		},
		Data: data,
	})

	return e.pipeline.Prepare(ctx, txbuild.Descriptor{
		Name:               derive.IxSendMemoToGroup,
		FeePayer:           senderPk,
		MemoText:           memoText,
		Instructions:       ixs,
		Budget:             e.budget(txbuild.BudgetChat),
		PriceMicroLamports: e.price(),
		RequireSimSuccess:  true,
	})
}

// GetChatGroup 读取单个聊天群
func (e *Engine) GetChatGroup(ctx context.Context, groupID uint64) (*parser.ChatGroup, error) {
	groupPDA, err := derive.ChatGroupPDA(e.programs.Chat, groupID)
	if err != nil {
		return nil, err
	}
	info, err := e.client.GetAccountInfo(ctx, groupPDA.Address.ToBase58())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, notFound("chat group", groupID)
	}
	return parser.ParseChatGroup(info.Data)
}

// ChatGroupExists 判断某 id 的聊天群是否在链上
func (e *Engine) ChatGroupExists(ctx context.Context, groupID uint64) (bool, error) {
	groupPDA, err := derive.ChatGroupPDA(e.programs.Chat, groupID)
	if err != nil {
		return false, err
	}
	info, err := e.client.GetAccountInfo(ctx, groupPDA.Address.ToBase58())
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

// GetTotalChatGroups 返回全网聊天群总数
func (e *Engine) GetTotalChatGroups(ctx context.Context) (uint64, error) {
	counterPDA, err := derive.GlobalCounterPDA(e.programs.Chat)
	if err != nil {
		return 0, err
	}
	return e.counterValue(ctx, counterPDA.Address)
}

// GetChatGroupsRange 按 [start, end) 拉取一段聊天群，缺失与坏账户跳过
func (e *Engine) GetChatGroupsRange(ctx context.Context, start, end uint64) ([]*parser.ChatGroup, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	infos, err := e.fetchByID(ctx, start, end, func(id uint64) (derive.PDA, error) {
		return derive.ChatGroupPDA(e.programs.Chat, id)
	})
	if err != nil {
		return nil, err
	}

	groups := make([]*parser.ChatGroup, 0, len(infos))
	for i, info := range infos {
		if info == nil {
			continue
		}
		g, perr := parser.ParseChatGroup(info.Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable chat group %d: %v", start+uint64(i), perr)
			continue
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// GetAllChatStatistics 全量扫描聊天群并汇总，id 从 0 连续走到计数器总数
func (e *Engine) GetAllChatStatistics(ctx context.Context) (*ChatStatistics, error) {
	total, err := e.GetTotalChatGroups(ctx)
	if err != nil {
		return nil, err
	}
	stats := &ChatStatistics{TotalGroups: total}
	if total == 0 {
		return stats, nil
	}

	infos, err := e.fetchByID(ctx, 0, total, func(id uint64) (derive.PDA, error) {
		return derive.ChatGroupPDA(e.programs.Chat, id)
	})
	if err != nil {
		return nil, err
	}

	stats.Groups = make([]*parser.ChatGroup, 0, total)
	for i, info := range infos {
		if info == nil {
			continue
		}
		g, perr := parser.ParseChatGroup(info.Data)
		if perr != nil {
			logger.Warnf("[Engine] skip undecodable chat group %d: %v", i, perr)
			continue
		}
		stats.ValidGroups++
		stats.TotalMemos += g.MemoCount
		stats.TotalBurnedTokens += g.BurnedAmount
		stats.Groups = append(stats.Groups, g)
	}
	return stats, nil
}

// GetChatMessages 从群地址的签名历史里并发还原消息。
// 单笔交易拉不到或不是聊天格式时只跳过该条；结果按时间升序。
func (e *Engine) GetChatMessages(ctx context.Context, groupID uint64, limit int, before string) (*ChatMessagesPage, error) {
	if limit <= 0 {
		limit = defaultChatMessageLimit
	}
	if limit > maxChatMessageLimit {
		limit = maxChatMessageLimit
	}

	groupPDA, err := derive.ChatGroupPDA(e.programs.Chat, groupID)
	if err != nil {
		return nil, err
	}
	sigs, err := e.client.GetSignaturesForAddress(ctx, groupPDA.Address.ToBase58(), limit, before)
	if err != nil {
		return nil, err
	}

	results := utils.ParallelMap(sigs, e.bulkConcurrency, func(sig rpc.SignatureInfo) *ChatMessage {
		if sig.Signature == "" || sig.Failed() {
			return nil
		}
		tx, terr := e.client.GetTransaction(ctx, sig.Signature)
		if terr != nil || tx == nil {
			logger.Debugf("[Engine] chat message tx %s unavailable: %v", sig.Signature, terr)
			return nil
		}
		text, ok := firstMemoText(tx)
		if !ok {
			return nil
		}
		msg, perr := memo.ParseChatMessage(text)
		if perr != nil || strings.TrimSpace(msg.Message) == "" {
			return nil
		}
		out := &ChatMessage{
			Signature:  sig.Signature,
			Sender:     msg.Sender,
			Message:    msg.Message,
			Receiver:   msg.Receiver,
			ReplyToSig: msg.ReplyToSig,
			Slot:       tx.Slot,
		}
		if tx.BlockTime != nil {
			out.Timestamp = *tx.BlockTime
		}
		return out
	})

	page := &ChatMessagesPage{
		GroupID: groupID,
		HasMore: len(sigs) == limit,
	}
	for _, msg := range results {
		if msg != nil {
			page.Messages = append(page.Messages, *msg)
		}
	}
	sort.SliceStable(page.Messages, func(i, j int) bool {
		return page.Messages[i].Timestamp < page.Messages[j].Timestamp
	})
	return page, nil
}

// firstMemoText 在解析态指令里找第一条 spl-memo 的文本。
// 不同客户端拼交易时 memo 位置不固定，按序扫一遍最稳。
func firstMemoText(tx *rpc.TransactionResult) (string, bool) {
	for _, ix := range tx.Transaction.Message.Instructions {
		if text, ok := ix.MemoText(); ok {
			return text, true
		}
	}
	return "", false
}

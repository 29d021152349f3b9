package llm

import (
	"context"
	"fmt"

	"CampusEat/backend/go/internal/config"
)

// ChatRequest 描述了一次文本生成调用：一条 system 指令加一条 user 提示词。
// 摘要引擎只需要这一种最简单的调用形态。
type ChatRequest struct {
	System      string  // system 角色的指令
	Prompt      string  // user 角色的提示词
	Temperature float32 // 采样温度
}

// LLM 定义了所有文本生成服务客户端必须实现的通用接口。
// 返回值是模型的原始文本输出，调用方负责解析。
type LLM interface {
	GenerateContent(ctx context.Context, req *ChatRequest) (string, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
func NewClient(cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAI.Model == "" {
			return nil, fmt.Errorf("openai provider 未配置模型名称")
		}
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.APIKey)
	case "ollama":
		if cfg.Ollama.Model == "" {
			return nil, fmt.Errorf("ollama provider 未配置模型名称")
		}
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

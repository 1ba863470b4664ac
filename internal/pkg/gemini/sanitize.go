package gemini

import (
	"errors"
	"strings"
)

var ErrInvalidCode = errors.New("generated code does not contain valid p5.js structure")

var fenceReplacer = strings.NewReplacer(
	"```javascript", "",
	"```js", "",
	"```", "",
)

// CleanCode 去掉模型输出里的 markdown 代码围栏，并做入口函数冒烟检查。
// 这只是文本层面的检查，不做任何解析或执行。
func CleanCode(raw string) (string, error) {
	code := strings.TrimSpace(fenceReplacer.Replace(raw))

	if !strings.Contains(code, "function setup(") || !strings.Contains(code, "function draw(") {
		return "", ErrInvalidCode
	}

	return code, nil
}

package conversation

import (
	"fmt"
	"strings"
)

// PlaceholderTitle is the default title the UI assigns to a fresh session.
// A session still carrying it gets auto-titled after its first reply.
const PlaceholderTitle = "Đoạn chat mới"

// ApologyMessage is stored as the assistant turn when generation fails.
const ApologyMessage = "Xin lỗi, đã có lỗi xảy ra khi xử lý yêu cầu của bạn. Vui lòng thử lại."

// personaPreamble is the fixed support-agent persona. A session's custom
// system prompt is prefixed to it, never substituted for it.
const personaPreamble = `Bạn đang đóng vai nhân viên hỗ trợ khách hàng của ứng dụng ghi chú trực tuyến MiNote.

Hướng dẫn:
- Luôn trả lời bằng tiếng Việt, trừ khi người dùng yêu cầu ngôn ngữ khác
- Xưng hô với người dùng 'mình - bạn'
- Trả lời thân thiện, nhiệt tình và chuyên nghiệp
- Ghi nhớ toàn bộ ngữ cảnh cuộc trò chuyện trước đó
- Tham chiếu đến các tin nhắn trước nếu liên quan`

// systemInstruction composes the system instruction for a session.
func systemInstruction(customPrompt *string) string {
	if customPrompt != nil && strings.TrimSpace(*customPrompt) != "" {
		return *customPrompt + "\n\n" + personaPreamble
	}
	return personaPreamble
}

// documentBlock wraps one document excerpt in its delimiters.
func documentBlock(title, excerpt string) string {
	return fmt.Sprintf("\n\n=== TÀI LIỆU: %s ===\n%s\n=== KẾT THÚC TÀI LIỆU ===\n", title, excerpt)
}

// documentInstruction wraps the concatenated document blocks together with
// the grounding instruction.
func documentInstruction(blocks string) string {
	return strings.TrimSpace(fmt.Sprintf(`=== HƯỚNG DẪN XỬ LÝ TÀI LIỆU ===
Các tài liệu sau đây đã được người dùng gắn thẻ trong cuộc trò chuyện:
%s

Nhiệm vụ của bạn:
- Phân tích kỹ các tài liệu trên
- Sử dụng thông tin từ tài liệu để trả lời câu hỏi
- Nếu câu hỏi liên quan đến nội dung tài liệu, hãy trích dẫn và giải thích cụ thể
- Trả lời chính xác dựa trên nội dung tài liệu, không bịa đặt thông tin`, blocks))
}

// sheetInstruction wraps the cached spreadsheet snapshot.
func sheetInstruction(data string) string {
	return strings.TrimSpace(fmt.Sprintf(`=== DỮ LIỆU THAM KHẢO TỪ GOOGLE SHEETS ===
%s
=== KẾT THÚC DỮ LIỆU ===`, data))
}

// titlePrompt asks the provider for a short Vietnamese session title.
func titlePrompt(userMessage string) string {
	return strings.TrimSpace(fmt.Sprintf(`Tạo một tiêu đề ngắn gọn bằng tiếng Việt cho cuộc trò chuyện này dựa trên câu hỏi:
"%s"

Yêu cầu:
- Chỉ trả về tiêu đề, không giải thích
- Ngắn gọn, súc tích (tối đa 50-60 ký tự)
- Phản ánh đúng nội dung câu hỏi`, userMessage))
}
